// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package undo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/pdm/internal/notify"
)

type markCall struct {
	endpoint string
	id       string
	deleted  bool
}

type fakeMarker struct {
	lock  sync.Mutex
	calls []markCall
	err   error
}

func (f *fakeMarker) SetDeleted(_ context.Context, endpoint, id string, deleted bool) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, markCall{endpoint: endpoint, id: id, deleted: deleted})
	return f.err
}

func (f *fakeMarker) Calls() []markCall {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]markCall(nil), f.calls...)
}

type callbackRecorder struct {
	results chan bool
}

func newCallbackRecorder() *callbackRecorder {
	return &callbackRecorder{results: make(chan bool, 1)}
}

func (c *callbackRecorder) callback(undone bool) {
	c.results <- undone
}

func TestDeleteThenUndo(t *testing.T) {
	t.Parallel()

	marker := &fakeMarker{}
	center := notify.NewCenter(10)
	manager := NewManager(marker, center, time.Minute)
	recorder := newCallbackRecorder()

	pending, err := manager.DeleteWithUndo(t.Context(), Request{
		Endpoint: "hog_functions",
		ID:       "42",
		Name:     "Slack alerts",
		Callback: recorder.callback,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pending.Token)
	assert.Equal(t, "Slack alerts", pending.Name)
	assert.Len(t, manager.Pending(), 1)

	notifications := center.Recent()
	require.Len(t, notifications, 1)
	assert.Equal(t, pending.Token, notifications[0].UndoToken)
	assert.Equal(t, "Slack alerts has been deleted", notifications[0].Message)

	require.NoError(t, manager.Undo(t.Context(), pending.Token))
	assert.True(t, <-recorder.results)
	assert.Empty(t, manager.Pending())
	assert.Equal(t, []markCall{
		{endpoint: "hog_functions", id: "42", deleted: true},
		{endpoint: "hog_functions", id: "42", deleted: false},
	}, marker.Calls())

	assert.ErrorIs(t, manager.Undo(t.Context(), pending.Token), ErrExpired)
}

func TestWindowExpires(t *testing.T) {
	t.Parallel()

	marker := &fakeMarker{}
	manager := NewManager(marker, notify.NewCenter(10), 10*time.Millisecond)
	recorder := newCallbackRecorder()

	pending, err := manager.DeleteWithUndo(t.Context(), Request{Endpoint: "plugin_configs", ID: "7", Name: "Hook", Callback: recorder.callback})
	require.NoError(t, err)

	select {
	case undone := <-recorder.results:
		assert.False(t, undone)
	case <-time.After(time.Second):
		require.Fail(t, "undo window never expired")
	}

	assert.ErrorIs(t, manager.Undo(t.Context(), pending.Token), ErrExpired)
	assert.Len(t, marker.Calls(), 1)
}

func TestDeleteFailure(t *testing.T) {
	t.Parallel()

	marker := &fakeMarker{err: assert.AnError}
	center := notify.NewCenter(10)
	manager := NewManager(marker, center, time.Minute)

	_, err := manager.DeleteWithUndo(t.Context(), Request{
		Endpoint: "plugin_configs",
		ID:       "7",
		Callback: func(bool) { assert.Fail(t, "callback must not run for failed deletions") },
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, manager.Pending())
	assert.Empty(t, center.Recent())
}

func TestCloseFinalizesPending(t *testing.T) {
	t.Parallel()

	manager := NewManager(&fakeMarker{}, notify.NewCenter(10), time.Minute)
	recorder := newCallbackRecorder()

	_, err := manager.DeleteWithUndo(t.Context(), Request{Endpoint: "plugin_configs", ID: "7", Callback: recorder.callback})
	require.NoError(t, err)

	manager.Close()
	assert.False(t, <-recorder.results)

	_, err = manager.DeleteWithUndo(t.Context(), Request{Endpoint: "plugin_configs", ID: "8"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDefaultWindow(t *testing.T) {
	t.Parallel()

	manager := NewManager(&fakeMarker{}, notify.NewCenter(1), 0)
	assert.Equal(t, DefaultWindow, manager.window)
}
