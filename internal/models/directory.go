package models

// TargetKind is the directory namespace a target name is resolved in.
type TargetKind string

const (
	TargetKindUser  TargetKind = "USER"
	TargetKindGroup TargetKind = "GROUP"
)

// User is a directory entry used for sender display data.
type User struct {
	ID       string `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
}
