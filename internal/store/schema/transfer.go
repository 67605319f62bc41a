package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Transfer represents the transfers table - one row per transfer accepted by its source chain
type Transfer struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// AttemptID is the ULID assigned to the attempt by the bridge
	AttemptID string `gorm:"column:attempt_id;not null;uniqueIndex;type:text"`
	// Kind is freeze for native assets and unfreeze for wrapped ones
	Kind string `gorm:"column:kind;not null;type:text"`
	// FromChain is the nonce of the source chain
	FromChain uint16 `gorm:"column:from_chain;not null;uniqueIndex:idx_transfers_source_event"`
	// ToChain is the nonce of the destination chain
	ToChain uint16 `gorm:"column:to_chain;not null"`
	// Sender is the signer address on the source chain
	Sender string `gorm:"column:sender;not null;type:text;index"`
	// Receiver is the address on the destination chain
	Receiver string `gorm:"column:receiver;not null;type:text"`
	// NftIdentity identifies the NFT on the source chain
	NftIdentity string `gorm:"column:nft_identity;not null;type:text"`
	// TxHash is the source chain transaction
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// EventID is the action id the relay keys on, unique per source chain
	EventID string `gorm:"column:event_id;not null;type:text;uniqueIndex:idx_transfers_source_event"`
	// Fee is the fee paid, in the smallest unit of the destination chain
	Fee string `gorm:"column:fee;not null;type:numeric(78,0)"`
	// SubmittedAt is when the source chain accepted the transfer
	SubmittedAt time.Time `gorm:"column:submitted_at;not null;type:timestamptz"`
	// Meta holds the full transfer event as JSON
	Meta datatypes.JSON `gorm:"column:meta;type:jsonb"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Transfer model
func (Transfer) TableName() string {
	return "transfers"
}
