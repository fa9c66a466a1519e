package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/memoria/internal/dbx"
	"github.com/dmitrijs2005/memoria/internal/server/repositories/memories"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Memories(db dbx.DBTX) memories.Repository
}
