// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAnalysisLock_SecondCallerWaitsAndObservesAlreadyAnalyzed(t *testing.T) {
	l := NewAnalysisLock("proj")

	outcome, err := l.Acquire(context.Background(), false)
	if err != nil || outcome != Acquired {
		t.Fatalf("first Acquire: outcome=%v err=%v", outcome, err)
	}

	done := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		l.Release()
		close(done)
	}()

	outcome, err = l.Acquire(context.Background(), false)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if outcome != AlreadyAnalyzed {
		t.Fatalf("expected AlreadyAnalyzed, got %v", outcome)
	}
	<-done
}

func TestAnalysisLock_ForceFailsImmediatelyAgainstHeldLock(t *testing.T) {
	l := NewAnalysisLock("proj")

	outcome, err := l.Acquire(context.Background(), false)
	if err != nil || outcome != Acquired {
		t.Fatalf("first Acquire: outcome=%v err=%v", outcome, err)
	}

	start := time.Now()
	_, err = l.Acquire(context.Background(), true)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrForceWhileRunning) {
		t.Fatalf("expected ErrForceWhileRunning, got %v", err)
	}
	if elapsed > 50*time.Millisecond {
		t.Fatalf("expected an immediate failure, took %v", elapsed)
	}
}

func TestAnalysisLock_ContextCancellationDuringWaitReturnsContextError(t *testing.T) {
	l := NewAnalysisLock("proj")

	if outcome, err := l.Acquire(context.Background(), false); err != nil || outcome != Acquired {
		t.Fatalf("first Acquire: outcome=%v err=%v", outcome, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.Acquire(ctx, false)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestAnalysisLock_TimeoutWhileWaitingReturnsLockTimeout(t *testing.T) {
	l := NewAnalysisLock("proj")
	l.timeout = 20 * time.Millisecond

	if outcome, err := l.Acquire(context.Background(), false); err != nil || outcome != Acquired {
		t.Fatalf("first Acquire: outcome=%v err=%v", outcome, err)
	}

	_, err := l.Acquire(context.Background(), false)
	if err == nil {
		t.Fatalf("expected a timeout error, got nil")
	}
}

func TestAnalysisLock_ReleaseWithoutAcquireIsSafe(t *testing.T) {
	l := NewAnalysisLock("proj")
	l.Release()

	outcome, err := l.Acquire(context.Background(), false)
	if err != nil || outcome != Acquired {
		t.Fatalf("Acquire after spurious Release: outcome=%v err=%v", outcome, err)
	}
}
