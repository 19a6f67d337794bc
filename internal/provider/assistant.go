// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pdiddy/vega/pkg/types"
)

const (
	assistantName         = "VEGA XTP Generator"
	assistantVectorStore  = "Spec Documents"
	assistantInstructions = `You are an expert hardware verification engineer.
Your task is to analyze hardware specifications and generate comprehensive XML test plans.
Always output valid XML. Include requirements, test suites, and test cases.
Reference page numbers from the source document.`

	messageListLimit = 20
)

var (
	// ErrRunFailed is returned when an assistant run ends in a failure state.
	ErrRunFailed = errors.New("assistant run did not complete")

	// ErrRunTimeout is returned when a run or file ingestion outlasts MaxWait.
	ErrRunTimeout = errors.New("assistant run timed out")
)

// assistantAPI is the subset of the go-openai client used by Assistant.
type assistantAPI interface {
	CreateFile(ctx context.Context, request openai.FileRequest) (openai.File, error)
	DeleteFile(ctx context.Context, fileID string) error
	CreateVectorStore(ctx context.Context, request openai.VectorStoreRequest) (openai.VectorStore, error)
	RetrieveVectorStore(ctx context.Context, vectorStoreID string) (openai.VectorStore, error)
	DeleteVectorStore(ctx context.Context, vectorStoreID string) (openai.VectorStoreDeleteResponse, error)
	CreateAssistant(ctx context.Context, request openai.AssistantRequest) (openai.Assistant, error)
	DeleteAssistant(ctx context.Context, assistantID string) (openai.AssistantDeleteResponse, error)
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

// runState classifies an assistant run status.
type runState int

const (
	runPending runState = iota
	runCompleted
	runFailed
)

// classifyRun maps every documented run status onto the poll loop's states.
// Unknown statuses are treated as pending so a new API status does not end
// the run early; MaxWait still bounds the loop.
func classifyRun(status openai.RunStatus) runState {
	switch status {
	case openai.RunStatusCompleted:
		return runCompleted
	case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired,
		openai.RunStatusIncomplete, openai.RunStatusRequiresAction:
		return runFailed
	default:
		return runPending
	}
}

// Assistant uploads the PDF to OpenAI, attaches it to a file_search
// assistant through a vector store, and runs the prompt on a new thread.
type Assistant struct {
	api          assistantAPI
	model        string
	pollInterval time.Duration
	maxWait      time.Duration
	cleanup      bool
	logger       *zap.Logger
}

// NewAssistant builds an OpenAI Assistants provider.
func NewAssistant(cfg types.AssistantConfig, logger *zap.Logger) (*Assistant, error) {
	if cfg.APIKey == "" {
		return nil, missingCredential(types.ProviderOpenAIAssistant)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return newAssistant(openai.NewClientWithConfig(clientCfg), cfg, logger), nil
}

func newAssistant(api assistantAPI, cfg types.AssistantConfig, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assistant{
		api:          api,
		model:        cfg.Model,
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
		cleanup:      cfg.Cleanup,
		logger:       logger,
	}
	if a.model == "" {
		a.model = types.DefaultAssistantModel
	}
	if a.pollInterval <= 0 {
		a.pollInterval = types.DefaultPollInterval
	}
	if a.maxWait <= 0 {
		a.maxWait = types.DefaultAssistantMaxWait
	}
	return a
}

// Name implements Provider.
func (a *Assistant) Name() types.ProviderName { return types.ProviderOpenAIAssistant }

// Generate implements Provider. Remote resources created along the way are
// deleted before returning when cleanup is enabled, even on failure.
func (a *Assistant) Generate(ctx context.Context, doc *types.Document, prompt string) (text string, err error) {
	var cleanups []func(context.Context)
	defer func() {
		if !a.cleanup {
			return
		}
		cctx := context.WithoutCancel(ctx)
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i](cctx)
		}
	}()

	file, err := a.api.CreateFile(ctx, openai.FileRequest{
		FileName: doc.Name,
		FilePath: doc.Path,
		Purpose:  string(openai.PurposeAssistants),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", doc.Name, err)
	}
	a.logger.Info("file uploaded", zap.String("file_id", file.ID))
	cleanups = append(cleanups, func(c context.Context) {
		if err := a.api.DeleteFile(c, file.ID); err != nil {
			a.logger.Warn("cleanup: deleting file", zap.String("file_id", file.ID), zap.Error(err))
		}
	})

	store, err := a.api.CreateVectorStore(ctx, openai.VectorStoreRequest{
		Name:    assistantVectorStore,
		FileIDs: []string{file.ID},
	})
	if err != nil {
		return "", fmt.Errorf("creating vector store: %w", err)
	}
	cleanups = append(cleanups, func(c context.Context) {
		if _, err := a.api.DeleteVectorStore(c, store.ID); err != nil {
			a.logger.Warn("cleanup: deleting vector store", zap.String("vector_store_id", store.ID), zap.Error(err))
		}
	})

	if err := a.waitForIngestion(ctx, store.ID); err != nil {
		return "", err
	}

	name, instructions := assistantName, assistantInstructions
	asst, err := a.api.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        a.model,
		Name:         &name,
		Instructions: &instructions,
		Tools:        []openai.AssistantTool{{Type: openai.AssistantToolTypeFileSearch}},
		ToolResources: &openai.AssistantToolResource{
			FileSearch: &openai.AssistantToolFileSearch{VectorStoreIDs: []string{store.ID}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating assistant: %w", err)
	}
	a.logger.Info("assistant created", zap.String("assistant_id", asst.ID))
	cleanups = append(cleanups, func(c context.Context) {
		if _, err := a.api.DeleteAssistant(c, asst.ID); err != nil {
			a.logger.Warn("cleanup: deleting assistant", zap.String("assistant_id", asst.ID), zap.Error(err))
		}
	})

	thread, err := a.api.CreateThread(ctx, openai.ThreadRequest{
		Messages: []openai.ThreadMessage{{Role: openai.ThreadMessageRoleUser, Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}

	run, err := a.api.CreateRun(ctx, thread.ID, openai.RunRequest{AssistantID: asst.ID})
	if err != nil {
		return "", fmt.Errorf("starting run: %w", err)
	}

	if _, err := a.waitForRun(ctx, thread.ID, run.ID); err != nil {
		return "", err
	}

	return a.latestReply(ctx, thread.ID, run.ID)
}

// waitForRun polls the run until it reaches a terminal state or maxWait
// elapses.
func (a *Assistant) waitForRun(ctx context.Context, threadID, runID string) (openai.Run, error) {
	deadline := time.NewTimer(a.maxWait)
	defer deadline.Stop()

	for {
		run, err := a.api.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return run, fmt.Errorf("retrieving run %s: %w", runID, err)
		}

		switch classifyRun(run.Status) {
		case runCompleted:
			return run, nil
		case runFailed:
			if run.LastError != nil {
				return run, fmt.Errorf("%w: run %s %s: %s", ErrRunFailed, runID, run.Status, run.LastError.Message)
			}
			return run, fmt.Errorf("%w: run %s %s", ErrRunFailed, runID, run.Status)
		}

		a.logger.Debug("run pending", zap.String("run_id", runID), zap.String("status", string(run.Status)))
		if err := a.sleep(ctx, deadline.C); err != nil {
			return run, fmt.Errorf("run %s (last status %s): %w", runID, run.Status, err)
		}
	}
}

// waitForIngestion polls the vector store until no file is still being
// processed, so file_search sees the document.
func (a *Assistant) waitForIngestion(ctx context.Context, storeID string) error {
	deadline := time.NewTimer(a.maxWait)
	defer deadline.Stop()

	for {
		store, err := a.api.RetrieveVectorStore(ctx, storeID)
		if err != nil {
			return fmt.Errorf("retrieving vector store %s: %w", storeID, err)
		}
		if store.FileCounts.InProgress == 0 {
			if store.FileCounts.Failed > 0 {
				return fmt.Errorf("%w: vector store %s could not index the document", ErrRunFailed, storeID)
			}
			return nil
		}
		if err := a.sleep(ctx, deadline.C); err != nil {
			return fmt.Errorf("indexing vector store %s: %w", storeID, err)
		}
	}
}

func (a *Assistant) sleep(ctx context.Context, deadline <-chan time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-deadline:
		return fmt.Errorf("%w after %v", ErrRunTimeout, a.maxWait)
	case <-time.After(a.pollInterval):
		return nil
	}
}

// latestReply returns the text of the newest assistant message of the run.
func (a *Assistant) latestReply(ctx context.Context, threadID, runID string) (string, error) {
	limit, order := messageListLimit, "desc"
	list, err := a.api.ListMessage(ctx, threadID, &limit, &order, nil, nil, &runID)
	if err != nil {
		return "", fmt.Errorf("listing messages: %w", err)
	}

	for _, msg := range list.Messages {
		if msg.Role != "assistant" {
			continue
		}
		var b strings.Builder
		found := false
		for _, c := range msg.Content {
			if c.Text != nil {
				found = true
				b.WriteString(c.Text.Value)
			}
		}
		if found {
			return b.String(), nil
		}
	}
	return "", fmt.Errorf("assistant thread %s: %w", threadID, ErrEmptyResponse)
}
