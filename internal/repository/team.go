package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/edutech-labs/course-booking/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TeamRepository handles persistence for team members.
type TeamRepository struct {
	db *pgxpool.Pool
}

// NewTeamRepository constructs a TeamRepository.
func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create inserts a new team member.
func (r *TeamRepository) Create(ctx context.Context, in model.TeamMemberInput) (*model.TeamMember, error) {
	member := &model.TeamMember{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Credentials: in.Credentials,
		Expertise:   in.Expertise,
		Bio:         in.Bio,
		Image:       in.Image,
		LinkedIn:    in.LinkedIn,
		Twitter:     in.Twitter,
		GitHub:      in.GitHub,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO team_members (id, name, credentials, expertise, bio, image,
		    linkedin, twitter, github, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		member.ID, member.Name, member.Credentials, member.Expertise, member.Bio,
		member.Image, member.LinkedIn, member.Twitter, member.GitHub, member.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert team member: %w", err)
	}
	return member, nil
}

// List returns all team members in creation order.
func (r *TeamRepository) List(ctx context.Context) ([]model.TeamMember, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, credentials, expertise, bio, image, linkedin, twitter,
		        github, created_at
		 FROM team_members
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var members []model.TeamMember
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Credentials, &m.Expertise, &m.Bio,
			&m.Image, &m.LinkedIn, &m.Twitter, &m.GitHub, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Update replaces a team member's fields.
func (r *TeamRepository) Update(ctx context.Context, id string, in model.TeamMemberInput) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE team_members SET name = $2, credentials = $3, expertise = $4,
		    bio = $5, image = $6, linkedin = $7, twitter = $8, github = $9
		 WHERE id = $1`,
		id, in.Name, in.Credentials, in.Expertise, in.Bio, in.Image,
		in.LinkedIn, in.Twitter, in.GitHub,
	)
	if err != nil {
		return fmt.Errorf("update team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a team member.
func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
