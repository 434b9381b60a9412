package database

import (
	"database/sql"
	"fmt"

	"github.com/hooptrack/hooptrack/internal/models"
)

// VideoRepository is the catalog of uploaded videos.
type VideoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Insert(video *models.Video) error {
	query := r.rebind(`
		INSERT INTO videos (id, original_name, filename, content_type, size, upload_time, session_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.conn.Exec(query,
		video.ID, video.OriginalName, video.Filename, video.ContentType,
		video.Size, video.UploadTime, video.SessionID)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetByID(id string) (*models.Video, error) {
	query := r.rebind(`
		SELECT id, original_name, filename, content_type, size, upload_time, session_id
		FROM videos WHERE id = ?`)

	var video models.Video
	err := r.db.conn.QueryRow(query, id).Scan(
		&video.ID, &video.OriginalName, &video.Filename, &video.ContentType,
		&video.Size, &video.UploadTime, &video.SessionID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("video not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) List() ([]models.Video, error) {
	rows, err := r.db.conn.Query(`
		SELECT id, original_name, filename, content_type, size, upload_time, session_id
		FROM videos ORDER BY upload_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID, &video.OriginalName, &video.Filename, &video.ContentType,
			&video.Size, &video.UploadTime, &video.SessionID); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// SetSession links an upload to the analysis session it produced.
func (r *VideoRepository) SetSession(videoID, sessionID string) error {
	query := r.rebind(`UPDATE videos SET session_id = ? WHERE id = ?`)

	res, err := r.db.conn.Exec(query, sessionID, videoID)
	if err != nil {
		return fmt.Errorf("failed to link session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("video not found: %s", videoID)
	}
	return nil
}

// rebind rewrites ? placeholders to $N for postgres.
func (r *VideoRepository) rebind(query string) string {
	if r.db.dbType != "postgres" {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}
