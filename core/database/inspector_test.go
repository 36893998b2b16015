package database

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns(t *testing.T) {
	// Setup In-Memory DB
	cfg := Config{
		Driver: "sqlite",
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)

	err = db.Exec("CREATE TABLE porter_documents (id INTEGER PRIMARY KEY, document_id TEXT, content_type TEXT, data TEXT)").Error
	assert.NoError(t, err)

	columns, err := GetTableColumns(db, "porter_documents")
	assert.NoError(t, err)
	assert.Len(t, columns, 4)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["document_id"])
	assert.Equal(t, "text", colMap["content_type"])

	// PRAGMA table_info returns an empty result for a non-existent table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestHasColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)

	err = db.Exec("CREATE TABLE porter_media (id INTEGER PRIMARY KEY, name TEXT, hash TEXT)").Error
	assert.NoError(t, err)

	missing, err := HasColumns(db, "porter_media", []string{"name", "hash", "url"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"url"}, missing)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	assert.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("Document_ID", "VARCHAR(64)", "NO", "MUL", nil, "").
		AddRow("data", "JSON", "YES", "", nil, "")
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `porter_documents`")).WillReturnRows(rows)

	columns, err := GetTableColumns(db, "porter_documents")
	assert.NoError(t, err)
	assert.Len(t, columns, 2)
	// Field and type are normalized to lower case.
	assert.Equal(t, "document_id", columns[0].Field)
	assert.Equal(t, "varchar(64)", columns[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}
