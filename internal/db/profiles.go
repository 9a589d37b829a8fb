package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/fitscore/internal/types"
)

// SaveProfile inserts or replaces an entity profile
func (db *DB) SaveProfile(ctx context.Context, profile *types.EntityProfile) error {
	content, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO profiles (id, kind, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET kind = $2, content = $3, updated_at = NOW()`,
		profile.ID, string(profile.Kind), content,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.ID, err)
	}
	return nil
}

// GetProfile retrieves a profile by ID. It returns nil when no profile exists.
func (db *DB) GetProfile(ctx context.Context, id string) (*types.EntityProfile, error) {
	var content []byte
	err := db.pool.QueryRow(ctx, `SELECT content FROM profiles WHERE id = $1`, id).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
	}

	var profile types.EntityProfile
	if err := json.Unmarshal(content, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", id, err)
	}
	return &profile, nil
}

// SaveLead inserts or replaces a lead record
func (db *DB) SaveLead(ctx context.Context, lead *types.LeadProfile) error {
	content, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO leads (id, content)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET content = $2, updated_at = NOW()`,
		lead.ID, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save lead %s: %w", lead.ID, err)
	}
	return nil
}

// GetLead retrieves a lead by ID. It returns nil when no lead exists.
func (db *DB) GetLead(ctx context.Context, id string) (*types.LeadProfile, error) {
	var content []byte
	err := db.pool.QueryRow(ctx, `SELECT content FROM leads WHERE id = $1`, id).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead %s: %w", id, err)
	}

	var lead types.LeadProfile
	if err := json.Unmarshal(content, &lead); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lead %s: %w", id, err)
	}
	return &lead, nil
}
