package mint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"github.com/atinyakov/SolForge/internal/solana"
)

// DefaultConfirmTimeout bounds the confirmation wait of a submitted mint.
const DefaultConfirmTimeout = 120 * time.Second

// Status is a step of the submission protocol.
type Status string

const (
	StatusApprovalPending Status = "wallet-approval-pending"
	StatusSubmitted       Status = "submitted"
	StatusConfirming      Status = "confirming"
	StatusConfirmed       Status = "confirmed"
	StatusError           Status = "error"
)

// Event reports a status transition. Signature is set from StatusSubmitted
// on; Err only accompanies StatusError.
type Event struct {
	Status    Status
	Signature string
	Err       error
}

// Observer receives submission events in order.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

// ChannelObserver forwards events to a channel. Sends block, so the
// channel should be buffered or drained concurrently.
type ChannelObserver chan<- Event

// Observe sends e on the channel.
func (c ChannelObserver) Observe(e Event) { c <- e }

// Wallet signs transactions on behalf of PublicKey.
type Wallet interface {
	PublicKey() common.PublicKey
	SignTransaction(ctx context.Context, tx types.Transaction) (types.Transaction, error)
}

// SendingWallet signs and submits in one step, returning the signature.
// Submit prefers it over the sign-then-send path when available.
type SendingWallet interface {
	Wallet
	SignAndSendTransaction(ctx context.Context, tx types.Transaction) (string, error)
}

// KeypairWallet signs with a local keypair.
type KeypairWallet struct {
	Account types.Account
}

// PublicKey returns the keypair address.
func (w KeypairWallet) PublicKey() common.PublicKey { return w.Account.PublicKey }

// SignTransaction adds the keypair signature to tx.
func (w KeypairWallet) SignTransaction(_ context.Context, tx types.Transaction) (types.Transaction, error) {
	data, err := tx.Message.Serialize()
	if err != nil {
		return tx, fmt.Errorf("serialize message: %w", err)
	}
	tx.Signatures = append([]types.Signature(nil), tx.Signatures...)
	if err := tx.AddSignature(w.Account.Sign(data)); err != nil {
		return tx, fmt.Errorf("add signature: %w", err)
	}
	return tx, nil
}

// TxError carries the failed stage, the signature when one exists and the
// node logs when the RPC returned them.
type TxError struct {
	Stage     string
	Signature string
	Logs      []string
	Err       error
}

func (e *TxError) Error() string {
	if e.Signature == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Signature, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

// Submission stages reported in TxError.
const (
	StageSign    = "sign"
	StageSend    = "send"
	StageConfirm = "confirm"
)

func txError(stage, sig string, err error) *TxError {
	te := &TxError{Stage: stage, Signature: sig, Err: err}
	var rerr *solana.RPCError
	if errors.As(err, &rerr) {
		te.Logs = rerr.Logs
	}
	return te
}

// Result identifies a confirmed mint.
type Result struct {
	MintAddress string
	Signature   string
}

// Submitter drives a prepared transaction through signing, submission and
// confirmation.
type Submitter struct {
	rpc solana.RPC
	log *zap.Logger

	// Timeout bounds the confirmation wait.
	Timeout time.Duration
	// PollInterval is the status polling period.
	PollInterval time.Duration
}

// NewSubmitter returns a Submitter with the default bounds.
func NewSubmitter(rpc solana.RPC, log *zap.Logger) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{
		rpc:          rpc,
		log:          log,
		Timeout:      DefaultConfirmTimeout,
		PollInterval: DefaultPollInterval,
	}
}

// Submit has w sign p, sends it and waits for confirmation, reporting every
// step to obs. A nil obs discards events.
func (s *Submitter) Submit(ctx context.Context, p *Prepared, w Wallet, obs Observer) (Result, error) {
	if obs == nil {
		obs = ObserverFunc(func(Event) {})
	}
	fail := func(te *TxError) (Result, error) {
		obs.Observe(Event{Status: StatusError, Signature: te.Signature, Err: te})
		s.log.Warn("mint submission failed",
			zap.String("stage", te.Stage),
			zap.String("signature", te.Signature),
			zap.Strings("logs", te.Logs),
			zap.Error(te.Err),
		)
		return Result{}, te
	}

	obs.Observe(Event{Status: StatusApprovalPending})

	var (
		sig string
		err error
	)
	if sw, ok := w.(SendingWallet); ok {
		if err := s.checkBlockhash(ctx, p.Blockhash); err != nil {
			return fail(txError(StageSend, "", err))
		}
		sig, err = sw.SignAndSendTransaction(ctx, p.Tx)
		if err != nil {
			return fail(txError(StageSend, "", err))
		}
	} else {
		signed, err := w.SignTransaction(ctx, p.Tx)
		if err != nil {
			return fail(txError(StageSign, "", err))
		}
		if err := s.checkBlockhash(ctx, p.Blockhash); err != nil {
			return fail(txError(StageSend, "", err))
		}
		sig, err = s.rpc.SendTransaction(ctx, signed)
		if err != nil {
			return fail(txError(StageSend, "", err))
		}
	}
	obs.Observe(Event{Status: StatusSubmitted, Signature: sig})
	s.log.Info("mint submitted",
		zap.String("signature", sig),
		zap.String("mint", p.MintAddress.ToBase58()),
	)

	obs.Observe(Event{Status: StatusConfirming, Signature: sig})
	cctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	expired := func(ctx context.Context) (bool, error) {
		h, err := s.rpc.GetBlockHeight(ctx)
		if err != nil {
			return false, err
		}
		return h > p.Blockhash.LastValidBlockHeight, nil
	}
	st, err := waitForConfirmation(cctx, s.rpc, sig, s.PollInterval, expired)
	if err != nil {
		return fail(txError(StageConfirm, sig, err))
	}
	if st.Err != nil {
		return fail(txError(StageConfirm, sig, fmt.Errorf("%w: %v", ErrTransactionRejected, st.Err)))
	}

	obs.Observe(Event{Status: StatusConfirmed, Signature: sig})
	return Result{MintAddress: p.MintAddress.ToBase58(), Signature: sig}, nil
}

// checkBlockhash fails with ErrStaleBlockhash once the chain has moved past
// the blockhash validity window.
func (s *Submitter) checkBlockhash(ctx context.Context, bh solana.Blockhash) error {
	h, err := s.rpc.GetBlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("block height: %w", err)
	}
	if h >= bh.LastValidBlockHeight {
		return fmt.Errorf("%w: valid until %d, height %d", ErrStaleBlockhash, bh.LastValidBlockHeight, h)
	}
	return nil
}

// Reconcile looks up a signature once, typically one returned with
// ErrConfirmationTimeout, and reports whether it landed.
func (s *Submitter) Reconcile(ctx context.Context, signature string) (solana.SignatureStatus, error) {
	st, err := s.rpc.GetSignatureStatus(ctx, signature)
	if err != nil {
		return solana.SignatureStatus{}, fmt.Errorf("reconcile %s: %w", signature, err)
	}
	return st, nil
}
