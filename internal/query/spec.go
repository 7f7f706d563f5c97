package query

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"message-service/internal/models"
)

// ClauseKind enumerates the predicates a thread query can carry.
type ClauseKind int

const (
	ClauseLive ClauseKind = iota
	ClauseConversation
	ClauseTargetIn
	ClauseType
)

func (k ClauseKind) String() string {
	switch k {
	case ClauseLive:
		return "live"
	case ClauseConversation:
		return "conversation"
	case ClauseTargetIn:
		return "target_in"
	case ClauseType:
		return "type"
	default:
		return "unknown"
	}
}

// Clause is a single predicate with its positional bindings. SQL uses ? placeholders.
type Clause struct {
	Kind ClauseKind
	SQL  string
	Args []any
}

// Live excludes tombstoned rows.
func Live() Clause {
	return Clause{Kind: ClauseLive, SQL: "m.deleted_at IS NULL"}
}

// Conversation matches both directions between selfID and otherID for the given type.
// The pair is unordered: Conversation(a, b, t) and Conversation(b, a, t) match the same rows.
func Conversation(selfID, otherID string, t models.MessageType) Clause {
	return Clause{
		Kind: ClauseConversation,
		SQL: "((m.sender_id = ? AND m.target_id = ? AND m.type = ?)" +
			" OR (m.sender_id = ? AND m.target_id = ? AND m.type = ?))",
		Args: []any{selfID, otherID, string(t), otherID, selfID, string(t)},
	}
}

// TargetIn matches rows addressed to any of ids. ids must not be empty.
func TargetIn(ids []string) Clause {
	return Clause{Kind: ClauseTargetIn, SQL: "m.target_id IN (?)", Args: []any{append([]string(nil), ids...)}}
}

// OfType matches rows of a single type.
func OfType(t models.MessageType) Clause {
	return Clause{Kind: ClauseType, SQL: "m.type = ?", Args: []any{string(t)}}
}

// Spec is a fully resolved thread query.
type Spec struct {
	Mode    Mode
	Clauses []Clause
	Sort    Sort
}

// Build turns criteria and an optional sort into a Spec. A nil sort means DefaultSort.
func Build(c Criteria, sort *Sort) Spec {
	spec := Spec{Mode: c.Mode(), Clauses: []Clause{Live()}, Sort: DefaultSort}
	if sort != nil {
		spec.Sort = *sort
	}

	switch spec.Mode {
	case ModeConversation:
		t, ok := c.Type()
		if !ok {
			t = models.MessageTypeDirect
		}
		spec.Clauses = append(spec.Clauses, Conversation(c.senderID, c.targetIDs[0], t))
	default:
		if len(c.targetIDs) > 0 {
			spec.Clauses = append(spec.Clauses, TargetIn(c.targetIDs))
		}
		if t, ok := c.Type(); ok {
			spec.Clauses = append(spec.Clauses, OfType(t))
		}
	}
	return spec
}

// Has reports whether the spec carries a clause of the given kind.
func (s Spec) Has(kind ClauseKind) bool {
	for _, cl := range s.Clauses {
		if cl.Kind == kind {
			return true
		}
	}
	return false
}

const selectThread = `SELECT m.id, m.content, m.type, m.target_id, m.sender_id, m.created_at,
        u.username AS sender_name, u.email AS sender_email
        FROM messages m
        JOIN users u ON u.id = m.sender_id`

// ToSQL renders the spec with ? placeholders, slices already expanded.
// Callers rebind the placeholders for their driver.
func (s Spec) ToSQL() (string, []any, error) {
	var (
		where []string
		args  []any
	)
	for _, cl := range s.Clauses {
		where = append(where, cl.SQL)
		args = append(args, cl.Args...)
	}

	var sb strings.Builder
	sb.WriteString(selectThread)
	if len(where) > 0 {
		sb.WriteString("\n        WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString("\n        ORDER BY ")
	sb.WriteString(s.Sort.orderBy())

	if !s.Has(ClauseTargetIn) {
		return sb.String(), args, nil
	}
	q, expanded, err := sqlx.In(sb.String(), args...)
	if err != nil {
		return "", nil, fmt.Errorf("expand target list: %w", err)
	}
	return q, expanded, nil
}
