package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

// credentialSlotRecord is the durable credential slot. One row per slot name;
// the session manager writes and erases it in lockstep with session
// transitions.
type credentialSlotRecord struct {
	bun.BaseModel `bun:"table:session_credentials,alias:sc"`

	ID             string    `bun:"id,pk"`
	Slot           string    `bun:"slot,notnull"`
	Payload        []byte    `bun:"payload,notnull"`
	PayloadFormat  string    `bun:"payload_format,notnull"`
	PayloadVersion int       `bun:"payload_version,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
