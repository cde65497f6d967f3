package audit

import (
	"context"
	"strings"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
)

// ListEntriesUseCase 查询审计日志
type ListEntriesUseCase struct {
	repo audit.Repository
}

// NewListEntriesUseCase 创建查询用例
func NewListEntriesUseCase(repo audit.Repository) *ListEntriesUseCase {
	return &ListEntriesUseCase{repo: repo}
}

// Execute 最新的在前,table为空时返回全部
func (uc *ListEntriesUseCase) Execute(ctx context.Context, table string) ([]EntryResponse, error) {
	var (
		entries []*audit.Entry
		err     error
	)
	if table = strings.TrimSpace(table); table != "" {
		entries, err = uc.repo.ListByTable(ctx, table)
	} else {
		entries, err = uc.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = EntryResponse{
			ID:        e.ID,
			Action:    string(e.Action),
			TableName: e.TableName,
			RecordID:  e.RecordID,
			User:      e.Actor,
			Details:   e.Details,
			CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return out, nil
}

// EntryResponse 审计日志
type EntryResponse struct {
	ID        uint   `json:"id"`
	Action    string `json:"action"`
	TableName string `json:"table_name"`
	RecordID  *uint  `json:"record_id"`
	User      string `json:"user"`
	Details   string `json:"details"`
	CreatedAt string `json:"created_at"`
}
