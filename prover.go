package identity

import (
	"context"
	"math/big"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/anon-identity/go-identity-pcd/bigint"
	"github.com/anon-identity/go-identity-pcd/circuits"
	"github.com/anon-identity/go-identity-pcd/constants"
	"github.com/anon-identity/go-identity-pcd/types"
)

// Prover turns a signature into an IdentityPCD through an external circuit
// executor. It keeps no state between calls.
type Prover struct {
	executor circuits.Executor
	cfg      config
}

// NewProver creates a prover for signatures over baseMessage.
func NewProver(executor circuits.Executor, baseMessage *big.Int, opts ...Option) *Prover {
	cfg := newConfig(baseMessage, constants.DefaultProveTimeout, opts)
	if cfg.newID == nil {
		cfg.newID = uuid.NewString
	}
	return &Prover{executor: executor, cfg: cfg}
}

// Prove generates a proof of knowledge of args.Signature. Malformed numbers
// fail with ErrMalformedNumber before the executor is called. An invalid
// signature fails with ErrProofGeneration, executor trouble with
// ErrCircuitUnavailable.
func (p *Prover) Prove(ctx context.Context, args ProveArgs) (*IdentityPCD, error) {
	modulus, err := bigint.Normalize(args.Modulus)
	if err != nil {
		return nil, errors.Wrap(err, "modulus")
	}
	baseMessage, err := bigint.Normalize(args.BaseMessage)
	if err != nil {
		return nil, errors.Wrap(err, "base message")
	}
	signature, err := bigint.Normalize(args.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "signature")
	}
	if modulus.Sign() <= 0 {
		return nil, errors.Wrap(ErrMalformedNumber, "modulus must be positive")
	}

	public := circuits.PublicInputs{BaseMessage: baseMessage, Modulus: modulus}
	witness := circuits.Witness{Signature: signature}
	// rejects negative values and values wider than the circuit
	if _, err = p.cfg.layout.CircuitInputs(public, witness); err != nil {
		return nil, err
	}

	if p.cfg.baseMessage == nil {
		return nil, errors.New("prover has no pinned base message")
	}
	if baseMessage.Cmp(p.cfg.baseMessage) != 0 {
		return nil, errors.Wrap(ErrProofGeneration, "base message differs from the pinned message")
	}

	if p.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.timeout)
		defer cancel()
	}

	log := p.cfg.logger.With(zap.String("circuit", string(p.cfg.circuitID)))
	log.Debug("generating identity proof", zap.Int("modulusBits", modulus.BitLen()))

	raw, err := p.execute(ctx, public, witness)
	if err != nil {
		err = classifyExecutorError(err)
		log.Info("identity proof generation failed", zap.Error(err))
		return nil, err
	}
	if raw == nil {
		return nil, errors.Wrap(ErrCircuitUnavailable, "executor returned no proof")
	}
	proof, err := raw.Normalize()
	if err != nil {
		return nil, errors.Wrapf(ErrCircuitUnavailable, "executor returned a malformed proof: %v", err)
	}

	pcd := NewIdentityPCD(p.cfg.newID(),
		IdentityClaim{Modulus: modulus},
		IdentityProof{Modulus: new(big.Int).Set(modulus), Proof: proof},
	)
	log.Info("identity proof generated", zap.String("id", pcd.ID))
	return pcd, nil
}

// execute calls the executor, turning a panic into ErrCircuitUnavailable.
func (p *Prover) execute(ctx context.Context, public circuits.PublicInputs, witness circuits.Witness) (raw *types.SnarkProof, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw, err = nil, errors.Wrapf(ErrCircuitUnavailable, "executor panicked: %v", r)
		}
	}()
	return p.executor.Execute(ctx, p.cfg.circuitID, public, witness)
}

// classifyExecutorError keeps credential failures apart from everything else,
// which is treated as the executor being unavailable.
func classifyExecutorError(err error) error {
	switch {
	case errors.Is(err, ErrProofGeneration), errors.Is(err, ErrCircuitUnavailable):
		return err
	default:
		return errors.Wrapf(ErrCircuitUnavailable, "%v", err)
	}
}
