package api

import (
	"context"
	"net/http"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/backup"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerBackupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups",
		Summary:     "Create backup",
		Description: "Writes a full database snapshot to the backup directory (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backups",
		Summary:     "List backups",
		Description: "Lists available backup archives, newest first (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups/{id}/restore",
		Summary:     "Restore backup",
		Description: "Replaces all data with the given backup and rebuilds the search index (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRestoreBackup)
}

// === DTOs ===

// BackupResponse describes a backup archive.
type BackupResponse struct {
	ID        string    `json:"id" doc:"Backup identifier"`
	Size      int64     `json:"size" doc:"Archive size in bytes"`
	CreatedAt time.Time `json:"created_at" doc:"When the backup was taken"`
}

// CreateBackupResponse describes a freshly created backup.
type CreateBackupResponse struct {
	BackupResponse
	Records  int    `json:"records" doc:"Primary records included"`
	Checksum string `json:"checksum" doc:"SHA-256 integrity checksum"`
}

// CreateBackupOutput wraps the creation result for Huma.
type CreateBackupOutput struct {
	Body CreateBackupResponse
}

// ListBackupsResponse contains available backup archives.
type ListBackupsResponse struct {
	Backups []BackupResponse `json:"backups" doc:"Available backups, newest first"`
}

// ListBackupsOutput wraps the backup list for Huma.
type ListBackupsOutput struct {
	Body ListBackupsResponse
}

// RestoreBackupInput identifies the backup to restore.
type RestoreBackupInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Backup identifier"`
}

// RestoreBackupResponse reports the restore outcome.
type RestoreBackupResponse struct {
	Records  int    `json:"records" doc:"Primary records restored"`
	Duration string `json:"duration" doc:"How long the restore took"`
}

// RestoreBackupOutput wraps the restore result for Huma.
type RestoreBackupOutput struct {
	Body RestoreBackupResponse
}

// === Handlers ===

func (s *Server) handleCreateBackup(ctx context.Context, input *ProfileInput) (*CreateBackupOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	result, err := s.services.Backup.Create(ctx, backup.Options{})
	if err != nil {
		return nil, err
	}

	return &CreateBackupOutput{
		Body: CreateBackupResponse{
			BackupResponse: BackupResponse{
				ID:        result.ID,
				Size:      result.Size,
				CreatedAt: result.CreatedAt,
			},
			Records:  result.Counts.Total(),
			Checksum: result.Checksum,
		},
	}, nil
}

func (s *Server) handleListBackups(ctx context.Context, input *ProfileInput) (*ListBackupsOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	backups, err := s.services.Backup.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := ListBackupsResponse{Backups: make([]BackupResponse, 0, len(backups))}
	for _, b := range backups {
		resp.Backups = append(resp.Backups, BackupResponse{
			ID:        b.ID,
			Size:      b.Size,
			CreatedAt: b.CreatedAt,
		})
	}

	return &ListBackupsOutput{Body: resp}, nil
}

func (s *Server) handleRestoreBackup(ctx context.Context, input *RestoreBackupInput) (*RestoreBackupOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	info, err := s.services.Backup.Find(ctx, input.ID)
	if err != nil {
		if domainerrors.Is(err, backup.ErrBackupNotFound) {
			return nil, huma.Error404NotFound("Backup not found")
		}
		return nil, err
	}

	result, err := s.services.Backup.Restore(ctx, info.Path)
	if err != nil {
		return nil, err
	}

	// The snapshot carries database state only; search documents live outside
	// the store and must be rebuilt.
	if s.searchIndex != nil {
		if err := s.services.Search.RebuildFromStore(ctx); err != nil {
			s.logger.Error("search rebuild after restore failed", "error", err)
		}
	}

	return &RestoreBackupOutput{
		Body: RestoreBackupResponse{
			Records:  result.Counts.Total(),
			Duration: result.Duration.String(),
		},
	}, nil
}
