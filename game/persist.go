package game

import "context"

// TableStore persists tables. Load returns TableNotFoundError for an unknown
// id. OpenTables lists the ids of tables that can still seat a player,
// oldest first.
type TableStore interface {
	Load(ctx context.Context, tableID string) (*Table, error)
	Save(ctx context.Context, t *Table) error
	OpenTables(ctx context.Context) ([]string, error)
}
