package catalog

import (
	"context"
	"fmt"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/model"
	"github.com/Veraticus/toolshed/internal/service"
)

// AddTool validates draft, appends it under a provisional id and, for a
// privileged session, creates it remotely and reconciles the catalog.
func (s *Store) AddTool(ctx context.Context, draft model.ToolDraft) (model.Tool, *Task, error) {
	draft = draft.Normalize()
	if err := model.ValidateToolDraft(draft); err != nil {
		return model.Tool{}, nil, err
	}

	now := s.now()
	tool := model.Tool{
		ID:           s.newID("tool"),
		Name:         draft.Name,
		Description:  draft.Description,
		UseCase:      draft.UseCase,
		Category:     draft.Category,
		PricingModel: draft.PricingModel,
		Website:      draft.Website,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	s.tools = append(s.tools, tool)
	s.mu.Unlock()

	token, ok := s.canPersist()
	if !ok {
		return tool, nil, nil
	}

	fields := common.Fields{"tool_id": tool.ID}
	task := s.spawn(ctx, "create tool", fields, func(ctx context.Context) error {
		if err := s.gw.CreateTool(ctx, service.ToolPayloadFrom(tool), token); err != nil {
			return err
		}
		return s.reconcileTools(ctx)
	})
	return tool, task, nil
}

// UpdateTool merges patch into the tool with id. The aggregate fields are
// never touched by a patch.
func (s *Store) UpdateTool(ctx context.Context, id string, patch model.ToolPatch) (model.Tool, *Task, error) {
	patch = patch.Normalize()
	if patch.IsEmpty() {
		return model.Tool{}, nil, common.NewValidationError("Nothing to update", "", "")
	}
	if err := model.ValidateToolPatch(patch); err != nil {
		return model.Tool{}, nil, err
	}

	s.mu.Lock()
	idx := s.toolIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Tool{}, nil, fmt.Errorf("tool %q: %w", id, common.ErrNotFound)
	}
	updated := patch.Apply(s.tools[idx])
	updated.UpdatedAt = s.now()
	s.tools[idx] = updated
	s.mu.Unlock()

	token, ok := s.canPersist()
	if !ok {
		return updated, nil, nil
	}

	task := s.spawn(ctx, "update tool", common.Fields{"tool_id": id}, func(ctx context.Context) error {
		if err := s.gw.UpdateTool(ctx, id, service.ToolPayloadFrom(updated), token); err != nil {
			return err
		}
		return s.reconcileTools(ctx)
	})
	return updated, task, nil
}

// DeleteTool removes the tool and every review that references it.
func (s *Store) DeleteTool(ctx context.Context, id string) (*Task, error) {
	s.mu.Lock()
	idx := s.toolIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("tool %q: %w", id, common.ErrNotFound)
	}
	s.tools = append(s.tools[:idx:idx], s.tools[idx+1:]...)
	kept := s.reviews[:0:0]
	for _, r := range s.reviews {
		if r.ToolID != id {
			kept = append(kept, r)
		}
	}
	s.reviews = kept
	s.mu.Unlock()

	token, ok := s.canPersist()
	if !ok {
		return nil, nil
	}

	return s.spawn(ctx, "delete tool", common.Fields{"tool_id": id}, func(ctx context.Context) error {
		if err := s.gw.DeleteTool(ctx, id, token); err != nil {
			return err
		}
		return s.reconcileTools(ctx)
	}), nil
}
