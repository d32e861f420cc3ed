package fixture

import "time"

type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentAccepted EnrollmentStatus = "accepted"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

type Team struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Enrollment links a team to a tournament. Only accepted enrollments take part
// in fixture generation.
type Enrollment struct {
	TournamentID int64            `db:"tournament_id" json:"tournament_id"`
	TeamID       int64            `db:"team_id" json:"team_id"`
	Status       EnrollmentStatus `db:"status" json:"status"`
}
