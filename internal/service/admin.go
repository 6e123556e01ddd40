package service

import (
	"context"

	"github.com/timmy/memebuster/internal/batch"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/repository"
)

// DuplicateGroup is a set of records sharing the same image URL. Keep names
// the record to preserve when the group is resolved; it defaults to the
// oldest member.
type DuplicateGroup struct {
	Key     string   `json:"key"`
	IDs     []string `json:"ids"`
	Keep    string   `json:"keep"`
	Removed int      `json:"removed,omitempty"`
}

// AdminService runs the bulk maintenance operations: re-analyze, delete, and
// find/resolve duplicate records. All fan-out goes through the shared batch
// runner with bounded concurrency.
type AdminService struct {
	analysis     *AnalysisService
	analysisRepo *repository.AnalysisRepository
	concurrency  int
	logger       *logger.Logger
}

// NewAdminService creates an admin service.
func NewAdminService(analysis *AnalysisService, analysisRepo *repository.AnalysisRepository, concurrency int, log *logger.Logger) *AdminService {
	return &AdminService{
		analysis:     analysis,
		analysisRepo: analysisRepo,
		concurrency:  concurrency,
		logger:       log,
	}
}

func (s *AdminService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// resolveIDs expands an empty selection to every stored record.
func (s *AdminService) resolveIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) > 0 {
		return ids, nil
	}
	all, err := s.analysisRepo.ListIDs(ctx)
	if err != nil {
		return nil, newPipelineError(CategoryStorageError,
			"Failed to list records", err.Error(), err)
	}
	return all, nil
}

// BulkReanalyze re-runs the pipeline over the selected records (all records
// when ids is empty), updating each in place. Per-record failures are
// collected, never fatal.
func (s *AdminService) BulkReanalyze(ctx context.Context, ids []string) (*batch.Summary, error) {
	ids, err := s.resolveIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	summary := batch.Run(ctx, ids, s.concurrency, func(ctx context.Context, id string) error {
		_, err := s.analysis.Reanalyze(ctx, id, "", false)
		return err
	})

	s.log(ctx).WithFields(logger.Fields{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("Bulk re-analysis complete")

	return &summary, nil
}

// BulkDelete removes the selected records (all records when ids is empty).
func (s *AdminService) BulkDelete(ctx context.Context, ids []string) (*batch.Summary, error) {
	ids, err := s.resolveIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	summary := batch.Run(ctx, ids, s.concurrency, func(ctx context.Context, id string) error {
		return s.analysisRepo.Delete(ctx, id)
	})

	s.log(ctx).WithFields(logger.Fields{
		"total":   summary.Total,
		"deleted": summary.Succeeded,
		"failed":  summary.Failed,
	}).Info("Bulk delete complete")

	return &summary, nil
}

// FindDuplicates groups records sharing the exact same image URL. Only
// groups with more than one member are returned, oldest member first.
func (s *AdminService) FindDuplicates(ctx context.Context) ([]DuplicateGroup, error) {
	refs, err := s.analysisRepo.ListImageRefs(ctx)
	if err != nil {
		return nil, newPipelineError(CategoryStorageError,
			"Failed to list records for duplicate scan", err.Error(), err)
	}

	grouped := make(map[string][]string)
	order := make([]string, 0)
	for _, ref := range refs {
		if _, seen := grouped[ref.ImageURL]; !seen {
			order = append(order, ref.ImageURL)
		}
		grouped[ref.ImageURL] = append(grouped[ref.ImageURL], ref.ID)
	}

	groups := make([]DuplicateGroup, 0)
	for _, key := range order {
		members := grouped[key]
		if len(members) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Key:  key,
			IDs:  members,
			Keep: members[0],
		})
	}

	return groups, nil
}

// ResolveDuplicates deletes every member of each group except the keeper.
// When groups is empty the current duplicate scan is resolved, keeping the
// oldest record per group.
func (s *AdminService) ResolveDuplicates(ctx context.Context, groups []DuplicateGroup) ([]DuplicateGroup, error) {
	if len(groups) == 0 {
		found, err := s.FindDuplicates(ctx)
		if err != nil {
			return nil, err
		}
		groups = found
	}

	for gi := range groups {
		if groups[gi].Keep == "" && len(groups[gi].IDs) > 0 {
			groups[gi].Keep = groups[gi].IDs[0]
		}
		for _, id := range groups[gi].IDs {
			if id == groups[gi].Keep {
				continue
			}
			if err := s.analysisRepo.Delete(ctx, id); err != nil {
				s.log(ctx).WithError(err).WithField(logger.FieldMemeID, id).
					Warn("Failed to delete duplicate record")
				continue
			}
			groups[gi].Removed++
		}
	}

	s.log(ctx).WithField(logger.FieldCount, len(groups)).Info("Duplicate resolution complete")

	return groups, nil
}
