package specification

import (
	"testing"

	"loan-assist-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB renders SQL without a live server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=loan dbname=loan sslmode=disable",
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func render(db *gorm.DB, specs ...Specification) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		tx = tx.Model(&model.LoanSession{})
		for _, spec := range specs {
			tx = spec.Apply(tx)
		}
		var rows []model.LoanSession
		return tx.Find(&rows)
	})
}

func TestSpecifications(t *testing.T) {
	db := dryRunDB(t)

	tests := []struct {
		name        string
		specs       []Specification
		contains    []string
		notContains []string
	}{
		{name: "by id", specs: []Specification{ByID{ID: "sess-1"}}, contains: []string{`id = 'sess-1'`}},
		{name: "owned by user", specs: []Specification{ByID{ID: "sess-1"}, UserOwnedBy{UserID: "user-1"}}, contains: []string{`id = 'sess-1'`, `user_id = 'user-1'`}},
		{name: "empty owner matches all", specs: []Specification{UserOwnedBy{}}, notContains: []string{"user_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := render(db, tt.specs...)
			assert.Contains(t, sql, `FROM "loan_sessions"`)
			for _, c := range tt.contains {
				assert.Contains(t, sql, c)
			}
			for _, c := range tt.notContains {
				assert.NotContains(t, sql, c)
			}
		})
	}
}
