package identity

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/anon-identity/go-identity-pcd/circuits"
	"github.com/anon-identity/go-identity-pcd/constants"
	"github.com/anon-identity/go-identity-pcd/pcd"
)

// Verifier checks identity PCDs against the pinned base message. It never
// mutates its input and is safe for concurrent use.
type Verifier struct {
	raw circuits.RawVerifier
	cfg config
}

// NewVerifier creates a verifier for proofs over baseMessage.
func NewVerifier(raw circuits.RawVerifier, baseMessage *big.Int, opts ...Option) *Verifier {
	cfg := newConfig(baseMessage, constants.DefaultVerifyTimeout, opts)
	if cfg.verified == nil {
		cfg.verified = defaultVerificationCache()
	}
	return &Verifier{raw: raw, cfg: cfg}
}

// Verify reports whether p carries a valid proof of its claim. Every failure,
// including errors and panics of the underlying verifier, yields false.
func (v *Verifier) Verify(ctx context.Context, p *IdentityPCD) (ok bool) {
	log := v.cfg.logger
	if p == nil {
		return false
	}
	log = log.With(zap.String("id", p.ID))
	if p.Type != PCDType {
		log.Debug("not an identity pcd", zap.String("type", p.Type))
		return false
	}
	if v.cfg.baseMessage == nil {
		log.Warn("verifier has no pinned base message")
		return false
	}
	if p.Claim.Modulus == nil || p.Proof.Modulus == nil || p.Claim.Modulus.Cmp(p.Proof.Modulus) != 0 {
		log.Info("claim and proof modulus differ")
		return false
	}
	raw := p.Proof.Proof
	if raw.Protocol != v.cfg.protocol || raw.Curve != v.cfg.curve {
		log.Info("unsupported proof system",
			zap.String("protocol", raw.Protocol.String()), zap.String("curve", raw.Curve.String()))
		return false
	}
	signals, err := v.cfg.layout.PublicSignals(p.Claim.Modulus, v.cfg.baseMessage)
	if err != nil {
		log.Info("claim does not fit the circuit", zap.Error(err))
		return false
	}

	key, err := v.fingerprint(p)
	if err != nil {
		log.Info("proof can not be fingerprinted", zap.Error(err))
		return false
	}
	if hit, found := v.cfg.verified.Get(key); found && hit {
		return true
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("verifier panicked", zap.Any("panic", r))
			ok = false
		}
	}()
	if v.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.timeout)
		defer cancel()
	}

	ok, err = v.raw.VerifyRaw(ctx, v.cfg.circuitID, raw, signals)
	if err != nil {
		log.Warn("proof could not be verified", zap.Error(err))
		return false
	}
	if !ok {
		log.Info("proof is invalid")
		return false
	}
	v.cfg.verified.Set(key, true)
	return true
}

// VerifySerialized deserializes data and verifies the result. Malformed data
// is reported as an error, an invalid proof as false.
func (v *Verifier) VerifySerialized(ctx context.Context, data []byte) (bool, error) {
	p, err := Deserialize(data)
	if err != nil {
		return false, err
	}
	return v.Verify(ctx, p), nil
}

// Register installs v as the verifier of PCDType in reg.
func Register(reg *pcd.Registry, v *Verifier) error {
	return reg.Register(PCDType, v.VerifySerialized)
}

// fingerprint hashes what a verification result depends on: circuit, base
// message, claim and proof. The instance id is left out.
func (v *Verifier) fingerprint(p *IdentityPCD) (string, error) {
	w, err := toWire(p)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(struct {
		Circuit     circuits.CircuitID `json:"circuit"`
		BaseMessage string             `json:"base_message"`
		Claim       *wireClaim         `json:"claim"`
		Proof       *wireProof         `json:"proof"`
	}{v.cfg.circuitID, v.cfg.baseMessage.String(), w.Claim, w.Proof})
	if err != nil {
		return "", errors.WithStack(err)
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
