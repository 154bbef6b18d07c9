// Package store is the SQLite layer: project settings, the example catalog,
// instruction history, chat history, and the persisted vector index.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/zacharybinks/RAG/internal/draft"
	"github.com/zacharybinks/RAG/internal/ingest"
	"github.com/zacharybinks/RAG/internal/instruction"
	"github.com/zacharybinks/RAG/internal/llm"
	"github.com/zacharybinks/RAG/internal/vectorstore"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens the SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			project_id TEXT PRIMARY KEY,
			model_name TEXT,
			temperature TEXT,
			context_size TEXT,
			system_prompt TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS proposal_examples (
			id TEXT PRIMARY KEY,
			title TEXT,
			source_path TEXT,
			client_type TEXT,
			domain TEXT,
			contract_vehicle TEXT,
			complexity_tier TEXT,
			tags TEXT,
			ingest_status TEXT,
			created_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS example_sections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			example_id TEXT,
			section_key TEXT,
			body TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS instructions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id TEXT,
			section_key TEXT,
			payload JSON,
			created_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id TEXT,
			message_type TEXT,
			text TEXT,
			created_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS vector_items (
			id TEXT PRIMARY KEY,
			collection TEXT,
			document TEXT,
			metadata JSON,
			embedding BLOB
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sections_example ON example_sections(example_id);`,
		`CREATE INDEX IF NOT EXISTS idx_instructions_project ON instructions(project_id, section_key);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_project ON chat_messages(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_vectors_collection ON vector_items(collection);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- Project settings ---

// ProjectSettings implements llm.SettingsSource. A missing project returns
// sql.ErrNoRows, which the resolver folds into its defaults.
func (s *SQLiteStore) ProjectSettings(ctx context.Context, projectID string) (llm.ProjectSettings, error) {
	var out llm.ProjectSettings
	err := s.db.QueryRowContext(ctx, `
		SELECT model_name, temperature, context_size, system_prompt
		FROM projects WHERE project_id = ?`, projectID).
		Scan(&out.ModelName, &out.Temperature, &out.ContextSize, &out.SystemPrompt)
	return out, err
}

func (s *SQLiteStore) UpsertProject(ctx context.Context, projectID string, settings llm.ProjectSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (project_id, model_name, temperature, context_size, system_prompt)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			model_name = excluded.model_name,
			temperature = excluded.temperature,
			context_size = excluded.context_size,
			system_prompt = excluded.system_prompt`,
		projectID, settings.ModelName, settings.Temperature, settings.ContextSize, settings.SystemPrompt)
	return err
}

// --- Example catalog (ingest.ExampleCatalog) ---

func (s *SQLiteStore) CreateExample(ctx context.Context, sourcePath string, meta ingest.ExampleMeta) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proposal_examples
			(id, title, source_path, client_type, domain, contract_vehicle, complexity_tier, tags, ingest_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'queued', ?)`,
		id, meta.Title, sourcePath, meta.ClientType, meta.Domain,
		meta.ContractVehicle, meta.ComplexityTier, meta.Tags, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) AddSection(ctx context.Context, exampleID, sectionKey, body string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO example_sections (example_id, section_key, body) VALUES (?, ?, ?)`,
		exampleID, sectionKey, body)
	return err
}

func (s *SQLiteStore) SetIngestStatus(ctx context.Context, exampleID, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE proposal_examples SET ingest_status = ? WHERE id = ?`, status, exampleID)
	return err
}

// ExampleRecord is one catalog row.
type ExampleRecord struct {
	ID              string
	Title           string
	SourcePath      string
	ClientType      string
	Domain          string
	ContractVehicle string
	ComplexityTier  string
	Tags            string
	IngestStatus    string
}

func (s *SQLiteStore) ListExamples(ctx context.Context) ([]ExampleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, source_path, client_type, domain, contract_vehicle, complexity_tier, tags, ingest_status
		FROM proposal_examples ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExampleRecord
	for rows.Next() {
		var r ExampleRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.SourcePath, &r.ClientType, &r.Domain,
			&r.ContractVehicle, &r.ComplexityTier, &r.Tags, &r.IngestStatus); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Instruction history (instruction.History) ---

func (s *SQLiteStore) SaveInstruction(ctx context.Context, projectID string, inst *instruction.SectionInstruction) error {
	payload, err := json.Marshal(inst)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO instructions (project_id, section_key, payload, created_at)
		VALUES (?, ?, ?, ?)`,
		projectID, inst.SectionKey, string(payload), time.Now().UTC())
	return err
}

// InstructionHistory returns a section's instruction sheets, newest first.
func (s *SQLiteStore) InstructionHistory(ctx context.Context, projectID, sectionKey string) ([]*instruction.SectionInstruction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM instructions
		WHERE project_id = ? AND section_key = ?
		ORDER BY id DESC`, projectID, sectionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*instruction.SectionInstruction
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var inst instruction.SectionInstruction
		if err := json.Unmarshal([]byte(payload), &inst); err != nil {
			return nil, err
		}
		out = append(out, &inst)
	}
	return out, rows.Err()
}

// --- Chat history (draft.ChatLog) ---

func (s *SQLiteStore) Append(ctx context.Context, projectID, messageType, text string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (project_id, message_type, text, created_at)
		VALUES (?, ?, ?, ?)`, projectID, messageType, text, time.Now().UTC())
	return err
}

// Turns pairs queries with the answers that followed them, oldest first. A
// query without an answer yet yields a turn with an empty assistant side.
func (s *SQLiteStore) Turns(ctx context.Context, projectID string) ([]draft.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_type, text FROM chat_messages
		WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []draft.ChatTurn
	for rows.Next() {
		var messageType, text string
		if err := rows.Scan(&messageType, &text); err != nil {
			return nil, err
		}
		switch messageType {
		case "query":
			out = append(out, draft.ChatTurn{User: text})
		case "answer":
			if len(out) > 0 && out[len(out)-1].Assistant == "" {
				out[len(out)-1].Assistant = text
			}
		}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ClearChat(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE project_id = ?`, projectID)
	return err
}

// --- Vector index persistence ---

// SaveVectors replaces the persisted index with a fresh snapshot.
func (s *SQLiteStore) SaveVectors(ctx context.Context, items []vectorstore.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vector_items`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_items (id, collection, document, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		meta, err := json.Marshal(item.Entry.Metadata)
		if err != nil {
			return err
		}
		buf := new(bytes.Buffer)
		if err := binary.Write(buf, binary.LittleEndian, item.Embedding); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, item.Entry.ID, item.Collection,
			item.Entry.Document, string(meta), buf.Bytes()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadVectors reads the persisted index back, ready for MemoryStore.Restore.
func (s *SQLiteStore) LoadVectors(ctx context.Context) ([]vectorstore.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection, document, metadata, embedding FROM vector_items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vectorstore.Item
	for rows.Next() {
		var (
			id, collection, document, meta string
			blob                           []byte
		)
		if err := rows.Scan(&id, &collection, &document, &meta, &blob); err != nil {
			return nil, err
		}
		metadata := map[string]string{}
		if err := json.Unmarshal([]byte(meta), &metadata); err != nil {
			return nil, err
		}
		embedding := make([]float32, len(blob)/4)
		if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &embedding); err != nil {
			return nil, err
		}
		out = append(out, vectorstore.Item{
			Collection: collection,
			Entry:      vectorstore.Entry{ID: id, Document: document, Metadata: metadata},
			Embedding:  embedding,
		})
	}
	return out, rows.Err()
}
