// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/vega/pkg/types"
)

// --- fake assistants API ---

type fakeAssistantAPI struct {
	runStatuses []openai.RunStatus // returned in order; the last one repeats
	lastError   *openai.RunLastError
	ingesting   int // RetrieveVectorStore calls that still report in_progress
	reply       string
	uploadErr   error

	runPolls     int
	storePolls   int
	deleted      []string
	assistantReq openai.AssistantRequest
	threadReq    openai.ThreadRequest
	listRunID    string
}

func (f *fakeAssistantAPI) CreateFile(_ context.Context, _ openai.FileRequest) (openai.File, error) {
	if f.uploadErr != nil {
		return openai.File{}, f.uploadErr
	}
	return openai.File{ID: "file_1"}, nil
}

func (f *fakeAssistantAPI) DeleteFile(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAssistantAPI) CreateVectorStore(_ context.Context, _ openai.VectorStoreRequest) (openai.VectorStore, error) {
	return openai.VectorStore{ID: "vs_1"}, nil
}

func (f *fakeAssistantAPI) RetrieveVectorStore(_ context.Context, id string) (openai.VectorStore, error) {
	f.storePolls++
	vs := openai.VectorStore{ID: id}
	if f.storePolls <= f.ingesting {
		vs.FileCounts.InProgress = 1
	} else {
		vs.FileCounts.Completed = 1
	}
	return vs, nil
}

func (f *fakeAssistantAPI) DeleteVectorStore(_ context.Context, id string) (openai.VectorStoreDeleteResponse, error) {
	f.deleted = append(f.deleted, id)
	return openai.VectorStoreDeleteResponse{}, nil
}

func (f *fakeAssistantAPI) CreateAssistant(_ context.Context, req openai.AssistantRequest) (openai.Assistant, error) {
	f.assistantReq = req
	return openai.Assistant{ID: "asst_1"}, nil
}

func (f *fakeAssistantAPI) DeleteAssistant(_ context.Context, id string) (openai.AssistantDeleteResponse, error) {
	f.deleted = append(f.deleted, id)
	return openai.AssistantDeleteResponse{}, nil
}

func (f *fakeAssistantAPI) CreateThread(_ context.Context, req openai.ThreadRequest) (openai.Thread, error) {
	f.threadReq = req
	return openai.Thread{ID: "thread_1"}, nil
}

func (f *fakeAssistantAPI) CreateRun(_ context.Context, _ string, _ openai.RunRequest) (openai.Run, error) {
	return openai.Run{ID: "run_1", Status: openai.RunStatusQueued}, nil
}

func (f *fakeAssistantAPI) RetrieveRun(_ context.Context, _ string, runID string) (openai.Run, error) {
	i := f.runPolls
	if i >= len(f.runStatuses) {
		i = len(f.runStatuses) - 1
	}
	f.runPolls++
	return openai.Run{ID: runID, Status: f.runStatuses[i], LastError: f.lastError}, nil
}

func (f *fakeAssistantAPI) ListMessage(_ context.Context, _ string, _ *int, _ *string, _ *string, _ *string, runID *string) (openai.MessagesList, error) {
	if runID != nil {
		f.listRunID = *runID
	}
	return openai.MessagesList{Messages: []openai.Message{
		{Role: "assistant", Content: []openai.MessageContent{{Type: "text", Text: &openai.MessageText{Value: f.reply}}}},
		{Role: "user", Content: []openai.MessageContent{{Type: "text", Text: &openai.MessageText{Value: "prompt"}}}},
	}}, nil
}

func testAssistant(api assistantAPI, cleanup bool) *Assistant {
	return newAssistant(api, types.AssistantConfig{
		PollInterval: time.Millisecond,
		MaxWait:      200 * time.Millisecond,
		Cleanup:      cleanup,
	}, nil)
}

func TestAssistantGenerateCompleted(t *testing.T) {
	api := &fakeAssistantAPI{
		runStatuses: []openai.RunStatus{openai.RunStatusQueued, openai.RunStatusInProgress, openai.RunStatusCompleted},
		ingesting:   2,
		reply:       "<testplan/>",
	}
	a := testAssistant(api, true)

	text, err := a.Generate(context.Background(), testDocument(), "make a plan")
	require.NoError(t, err)
	assert.Equal(t, "<testplan/>", text)
	assert.Equal(t, 3, api.runPolls)
	assert.Equal(t, 3, api.storePolls)
	assert.Equal(t, "run_1", api.listRunID)

	assert.Equal(t, types.DefaultAssistantModel, api.assistantReq.Model)
	require.NotNil(t, api.assistantReq.ToolResources)
	assert.Equal(t, []string{"vs_1"}, api.assistantReq.ToolResources.FileSearch.VectorStoreIDs)
	require.Len(t, api.threadReq.Messages, 1)
	assert.Equal(t, "make a plan", api.threadReq.Messages[0].Content)

	// Deleted newest first.
	assert.Equal(t, []string{"asst_1", "vs_1", "file_1"}, api.deleted)
}

func TestAssistantGenerateTerminalFailures(t *testing.T) {
	for _, status := range []openai.RunStatus{
		openai.RunStatusFailed,
		openai.RunStatusCancelled,
		openai.RunStatusExpired,
		openai.RunStatusIncomplete,
		openai.RunStatusRequiresAction,
	} {
		t.Run(string(status), func(t *testing.T) {
			api := &fakeAssistantAPI{
				runStatuses: []openai.RunStatus{openai.RunStatusInProgress, status},
				lastError:   &openai.RunLastError{Message: "server_error"},
			}
			a := testAssistant(api, true)

			_, err := a.Generate(context.Background(), testDocument(), "p")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRunFailed)
			assert.Contains(t, err.Error(), string(status))
			assert.Equal(t, 2, api.runPolls)

			got := append([]string(nil), api.deleted...)
			sort.Strings(got)
			assert.Equal(t, []string{"asst_1", "file_1", "vs_1"}, got)
		})
	}
}

func TestAssistantGenerateTimesOut(t *testing.T) {
	api := &fakeAssistantAPI{runStatuses: []openai.RunStatus{openai.RunStatusInProgress}}
	a := newAssistant(api, types.AssistantConfig{
		PollInterval: time.Millisecond,
		MaxWait:      20 * time.Millisecond,
		Cleanup:      true,
	}, nil)

	_, err := a.Generate(context.Background(), testDocument(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunTimeout)
	assert.Len(t, api.deleted, 3)
}

func TestAssistantGenerateUnknownStatusKeepsPolling(t *testing.T) {
	api := &fakeAssistantAPI{
		runStatuses: []openai.RunStatus{"thinking_hard", openai.RunStatusCompleted},
		reply:       "ok",
	}
	a := testAssistant(api, false)

	text, err := a.Generate(context.Background(), testDocument(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, api.runPolls)
	assert.Empty(t, api.deleted, "cleanup disabled")
}

func TestAssistantGenerateUploadFailure(t *testing.T) {
	api := &fakeAssistantAPI{uploadErr: errors.New("quota exceeded")}
	a := testAssistant(api, true)

	_, err := a.Generate(context.Background(), testDocument(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, api.deleted)
}

func TestAssistantGenerateCancelled(t *testing.T) {
	api := &fakeAssistantAPI{runStatuses: []openai.RunStatus{openai.RunStatusInProgress}}
	a := newAssistant(api, types.AssistantConfig{
		PollInterval: 50 * time.Millisecond,
		MaxWait:      time.Minute,
		Cleanup:      true,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := a.Generate(ctx, testDocument(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, api.deleted, 3, "cleanup runs after cancellation")
}

func TestClassifyRun(t *testing.T) {
	tests := []struct {
		status openai.RunStatus
		want   runState
	}{
		{openai.RunStatusQueued, runPending},
		{openai.RunStatusInProgress, runPending},
		{openai.RunStatusCancelling, runPending},
		{openai.RunStatusCompleted, runCompleted},
		{openai.RunStatusFailed, runFailed},
		{openai.RunStatusExpired, runFailed},
		{"brand_new_status", runPending},
	}
	for _, tt := range tests {
		if got := classifyRun(tt.status); got != tt.want {
			t.Errorf("classifyRun(%q) = %d, want %d", tt.status, got, tt.want)
		}
	}
}
