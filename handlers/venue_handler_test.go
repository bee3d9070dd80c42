package handlers

import "testing"

func TestIsVerifierEmptyAllowList(t *testing.T) {
	t.Setenv("ADMIN_CLERK_IDS", "")

	if isVerifier("") {
		t.Error("An empty subject must never pass an empty allow list")
	}
	if isVerifier("user_123") {
		t.Error("Nobody verifies when the allow list is unset")
	}
}

func TestIsVerifierAllowList(t *testing.T) {
	t.Setenv("ADMIN_CLERK_IDS", "user_abc,user_def")

	if !isVerifier("user_abc") {
		t.Error("Listed id should verify")
	}
	if !isVerifier("user_def") {
		t.Error("Listed id should verify")
	}
	if isVerifier("user_xyz") {
		t.Error("Unlisted id must not verify")
	}
	if isVerifier("") {
		t.Error("An empty subject must not verify")
	}
}
