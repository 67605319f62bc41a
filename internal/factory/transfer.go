package factory

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/xp-network/xpnet-go/internal/chain"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/guard"
	"github.com/xp-network/xpnet-go/internal/logger"
	"github.com/xp-network/xpnet-go/internal/metrics"
)

// TransferState is the progress of a transfer as seen by the bridge. Relay
// and destination completion happen outside of it.
type TransferState string

const (
	StateInitiated         TransferState = "initiated"
	StatePacked            TransferState = "packed"
	StateSubmittedOnSource TransferState = "submitted_on_source"
	StateFailed            TransferState = "failed"
)

// plan is the route and fee of a transfer
type plan struct {
	kind domain.TransferKind
	fee  *big.Int
}

// planTransfer validates the destination and decides between releasing a
// wrapped NFT back to its origin and locking the NFT for a new wrapped copy
func planTransfer[RF any, RT any](ctx context.Context, from chain.SourceChain[RF], to chain.DestinationChain[RT], nft domain.NftInfo[RF], receiver string) (plan, error) {
	fromNonce, toNonce := from.GetNonce(), to.GetNonce()
	if fromNonce == toNonce {
		return plan{}, domain.NewChainError(fromNonce, "transfer", fmt.Errorf("%w: source and destination are both %s", domain.ErrInvalidDestination, toNonce))
	}
	if receiver == "" {
		return plan{}, domain.NewChainError(toNonce, "transfer", fmt.Errorf("%w: receiver is required", domain.ErrInvalidDestination))
	}

	if from.IsWrappedNft(nft) {
		wrapped, err := from.DecodeWrappedNft(ctx, nft)
		if err != nil {
			return plan{}, domain.NewChainError(fromNonce, "decode wrapped nft", err)
		}

		if wrapped.ChainNonce == toNonce {
			original, err := to.DecodeNftFromRaw(ctx, wrapped.Data)
			if err != nil {
				return plan{}, domain.NewChainError(toNonce, "decode raw nft", err)
			}
			fee, err := to.EstimateValidateUnfreezeNft(ctx, receiver, original)
			if err != nil {
				return plan{}, domain.NewChainError(toNonce, "estimate unfreeze", err)
			}
			return plan{kind: domain.TransferKindUnfreeze, fee: fee}, nil
		}
	}

	packed, err := from.WrapNftForTransfer(nft)
	if err != nil {
		return plan{}, domain.NewChainError(fromNonce, "pack nft", err)
	}
	fee, err := to.EstimateValidateTransferNft(ctx, receiver, packed)
	if err != nil {
		return plan{}, domain.NewChainError(toNonce, "estimate transfer", err)
	}
	return plan{kind: domain.TransferKindFreeze, fee: fee}, nil
}

// TransferNft submits the transfer of nft from one chain to receiver on
// another and returns the source transaction with the event id the relay
// keys on. It returns once the source chain accepted the submission. A
// second transfer of the same NFT by the same sender fails with
// domain.ErrConcurrencyConflict while the first is in flight.
func TransferNft[SF any, RF any, TF any, RT any](ctx context.Context, f *Factory, from chain.FullChain[SF, RF, TF], to chain.DestinationChain[RT], nft domain.NftInfo[RF], sender SF, receiver string) (TF, string, error) {
	var zero TF
	fromNonce, toNonce := from.GetNonce(), to.GetNonce()
	labels := chainLabels(fromNonce, toNonce)
	start := f.clock.Now()

	senderAddr, err := from.SignerAddress(sender)
	if err != nil {
		return zero, "", domain.NewChainError(fromNonce, "transfer", err)
	}

	key := guard.Key{Sender: senderAddr, FromChain: fromNonce, Asset: from.NftIdentity(nft)}
	release, err := f.inflight.Acquire(key)
	if err != nil {
		f.recorder.IncCounter(metrics.TransferRejected, labels)
		return zero, "", domain.NewChainError(fromNonce, "transfer", err)
	}
	defer release()

	attemptID := f.newAttemptID()
	log := logger.FromContext(ctx).With(
		zap.String("attempt_id", attemptID),
		zap.Uint16("chain_nonce", uint16(fromNonce)),
		zap.Uint16("to_chain_nonce", uint16(toNonce)),
		zap.String("sender", senderAddr),
		zap.String("nft", key.Asset),
	)
	log.Info("Transfer state", zap.String("state", string(StateInitiated)))

	fail := func(err error) (TF, string, error) {
		f.recorder.IncCounter(metrics.TransferFailed, labels)
		log.Warn("Transfer state", zap.String("state", string(StateFailed)), zap.Error(err))
		return zero, "", err
	}

	p, err := planTransfer(ctx, from, to, nft, receiver)
	if err != nil {
		return fail(err)
	}
	log.Info("Transfer state", zap.String("state", string(StatePacked)), zap.String("kind", string(p.kind)), zap.Stringer("fee", p.fee))

	var (
		tx      TF
		eventID string
	)
	if p.kind == domain.TransferKindUnfreeze {
		tx, eventID, err = from.UnfreezeWrappedNft(ctx, sender, receiver, nft, p.fee)
	} else {
		tx, eventID, err = from.TransferNftToForeign(ctx, sender, toNonce, receiver, nft, p.fee)
	}
	if err == nil && eventID == "" {
		err = fmt.Errorf("%w: source chain returned no event id", domain.ErrSubmissionFailure)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientBalance) && !errors.Is(err, domain.ErrSubmissionFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrSubmissionFailure, err)
		}
		return fail(domain.NewChainError(fromNonce, "transfer", err))
	}

	event := &domain.TransferEvent{
		AttemptID:   attemptID,
		Kind:        p.kind,
		FromChain:   fromNonce,
		ToChain:     toNonce,
		Sender:      senderAddr,
		Receiver:    receiver,
		NftIdentity: key.Asset,
		TxHash:      from.TxHash(tx),
		EventID:     eventID,
		Fee:         p.fee.String(),
		SubmittedAt: f.clock.Now().UTC(),
	}
	log.Info("Transfer state",
		zap.String("state", string(StateSubmittedOnSource)),
		zap.String("event_id", eventID),
		zap.String("tx_hash", event.TxHash))

	f.recorder.IncCounter(metrics.TransferSubmitted, labels)
	f.recorder.ObserveLatency(metrics.TransferLatency, f.clock.Since(start), labels)
	f.announce(ctx, event)

	return tx, eventID, nil
}

// announce hands a submitted transfer to the publisher and the journal.
// Their failures are logged only: the transfer is already on chain and must
// not be submitted again.
func (f *Factory) announce(ctx context.Context, event *domain.TransferEvent) {
	ctx = context.WithoutCancel(ctx)
	labels := chainLabels(event.FromChain, event.ToChain)

	if f.publisher != nil {
		if err := f.publisher.PublishTransfer(ctx, event); err != nil {
			f.recorder.IncCounter(metrics.SinkFailed, labels)
			logger.ErrorCtx(ctx, fmt.Errorf("failed to publish transfer: %w", err),
				zap.String("attempt_id", event.AttemptID), zap.String("event_id", event.EventID))
		}
	}

	if f.journal != nil {
		if err := f.journal.SaveTransfer(ctx, event); err != nil {
			f.recorder.IncCounter(metrics.SinkFailed, labels)
			logger.ErrorCtx(ctx, fmt.Errorf("failed to record transfer: %w", err),
				zap.String("attempt_id", event.AttemptID), zap.String("event_id", event.EventID))
		}
	}
}
