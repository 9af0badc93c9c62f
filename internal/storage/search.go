/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	applog "gofountain/internal/log"
)

// Document is one script element as stored in the search index.
type Document struct {
	Ordinal   int
	Kind      string
	Scene     string
	Character string
	Text      string
}

// SearchQuery describes a search over one script's elements.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Kinds restricts results to element kinds such as "Dialogue" or "Action".
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text      string
	Kinds     []string
	Character string
	Scene     string
	Limit     int
	Offset    int
}

// SearchResult is a single matching element.
type SearchResult struct {
	Ordinal   int
	Kind      string
	Scene     string
	Character string
	Text      string
}

// IndexElements replaces the indexed elements of the script at path.
func IndexElements(ctx context.Context, path string, docs []Document) error {
	dir, key, err := scriptKey(path)
	if err != nil {
		return err
	}
	db, err := InitOrOpenIndex(dir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return indexDB(ctx, db, key, docs)
}

func indexDB(ctx context.Context, db *sql.DB, key string, docs []Document) error {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_elements").With(slog.String("script", key))
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM elements WHERE script = ?`, key); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear elements: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO elements(script, ordinal, kind, scene, character, text) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, key, d.Ordinal, d.Kind, nullable(d.Scene), nullable(d.Character), d.Text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert element %d: %w", d.Ordinal, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index: %w", err)
	}
	l.Debug("elements indexed", slog.Int("count", len(docs)))
	return nil
}

// Search performs full-text search with optional filters over the elements of
// the script at path. When q.Text is empty, it falls back to a plain scan
// with the filters applied.
func Search(ctx context.Context, path string, q SearchQuery) ([]SearchResult, error) {
	dir, key, err := scriptKey(path)
	if err != nil {
		return nil, err
	}
	db, err := InitOrOpenIndex(dir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	return searchDB(ctx, db, key, q)
}

func searchDB(ctx context.Context, db *sql.DB, key string, q SearchQuery) ([]SearchResult, error) {
	// Build dynamic SQL
	var args []any
	var sb strings.Builder
	sb.WriteString("SELECT e.ordinal, e.kind, COALESCE(e.scene,''), COALESCE(e.character,''), COALESCE(e.text,'')\n")
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("FROM fts_elements JOIN elements e ON fts_elements.rowid = e.doc_id\n")
		sb.WriteString("WHERE fts_elements MATCH ? AND e.script = ?\n")
		args = append(args, q.Text, key)
	} else {
		sb.WriteString("FROM elements e\nWHERE e.script = ?\n")
		args = append(args, key)
	}
	if len(q.Kinds) > 0 {
		sb.WriteString(" AND e.kind IN (" + placeholders(len(q.Kinds)) + ")\n")
		for _, k := range q.Kinds {
			args = append(args, k)
		}
	}
	if s := strings.TrimSpace(q.Character); s != "" {
		sb.WriteString(" AND lower(e.character) = ?\n")
		args = append(args, strings.ToLower(s))
	}
	if s := strings.TrimSpace(q.Scene); s != "" {
		sb.WriteString(" AND lower(e.scene) LIKE ? ESCAPE '\\'\n")
		args = append(args, likeContains(strings.ToLower(s)))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY e.ordinal\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Ordinal, &r.Kind, &r.Scene, &r.Character, &r.Text); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// likeContains wraps s for a LIKE match, escaping its wildcards.
func likeContains(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
