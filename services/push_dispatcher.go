package services

import (
	"context"
	"log"
	"sync"
	"time"
)

type PushProvider interface {
	SendPush(ctx context.Context, tokens []string, title, body string, data map[string]any) error
}

type PushJob struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]any
}

// PushDispatcher fans push notifications out through a small worker pool so a
// slow provider call never blocks a request handler.
type PushDispatcher struct {
	provider PushProvider
	workers  int
	jobQueue chan *PushJob
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewPushDispatcher() *PushDispatcher {
	d := &PushDispatcher{
		workers:  5,
		jobQueue: make(chan *PushJob, 100),
		stopChan: make(chan struct{}),
	}
	d.startWorkers()
	return d
}

// SetPushProvider injects the real FCM provider from main.go. Without one,
// jobs are logged and dropped.
func (d *PushDispatcher) SetPushProvider(provider PushProvider) {
	d.provider = provider
}

func (d *PushDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *PushDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *PushDispatcher) processJob(job *PushJob) {
	if d.provider == nil || len(job.Tokens) == 0 {
		log.Printf("Skipping push: ProviderSet=%v, Tokens=%d", d.provider != nil, len(job.Tokens))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.provider.SendPush(ctx, job.Tokens, job.Title, job.Body, job.Data); err != nil {
		log.Printf("Push failed: %v", err)
	}
}

// Dispatch queues a push job. Drops the job if the queue stays full.
func (d *PushDispatcher) Dispatch(job *PushJob) {
	select {
	case d.jobQueue <- job:
	case <-time.After(5 * time.Second):
		log.Printf("Failed to queue push job: queue full")
	}
}

func (d *PushDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}
