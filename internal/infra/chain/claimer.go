package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
)

// ClaimRewardSignature is the reward contract entry point a claim maps to.
const ClaimRewardSignature = "claimReward(string,address,uint256,string,bytes)"

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Claimer checks claim arguments against the contract's claimReward inputs.
// Sending the transaction is switched off, so a well-formed claim still ends
// with domain.ErrClaimDisabled.
type Claimer struct {
	log zerolog.Logger
}

func NewClaimer(log zerolog.Logger) *Claimer {
	return &Claimer{log: log}
}

var _ app.RewardClaimer = (*Claimer)(nil)

func (c *Claimer) ClaimReward(_ context.Context, req app.ClaimRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	c.log.Info().
		Str("user", req.UserID).
		Str("recipient", req.Recipient).
		Str("amount", req.Amount).
		Str("claim", req.RawClaimID).
		Msg("reward claim requested while claiming is disabled")
	return domain.ErrClaimDisabled
}

// Validate checks that req can be encoded as claimReward arguments.
func Validate(req app.ClaimRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user id is empty", domain.ErrInvalidClaim)
	}
	if !addressPattern.MatchString(req.Recipient) {
		return fmt.Errorf("%w: recipient %q is not an address", domain.ErrInvalidClaim, req.Recipient)
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() <= 0 || amount.BitLen() > 256 {
		return fmt.Errorf("%w: amount %q is not a positive uint256", domain.ErrInvalidClaim, req.Amount)
	}
	if req.RawClaimID == "" {
		return fmt.Errorf("%w: raw claim id is empty", domain.ErrInvalidClaim)
	}
	sig := strings.TrimPrefix(req.Signature, "0x")
	if sig == "" {
		return fmt.Errorf("%w: signature is empty", domain.ErrInvalidClaim)
	}
	if _, err := hex.DecodeString(sig); err != nil {
		return fmt.Errorf("%w: signature is not hex", domain.ErrInvalidClaim)
	}
	return nil
}
