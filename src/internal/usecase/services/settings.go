package services

import (
	"time"

	"github.com/api-sage/business-credits/src/internal/domain"
)

// Settings are the deployment parameters shared by every workflow.
type Settings struct {
	RootAccount     domain.Identity
	SignerPublicKey string
	TokenCode       []byte

	TokenTotalSupply string
	TokenDecimals    int
	TokenSpec        string

	BusinessInitialBalance string
	GasReserveAmount       string
	StorageDepositAmount   string
	CallGas                string

	// CallTimeout bounds each remote ledger call on its own.
	CallTimeout time.Duration

	// PayoutFromBusiness makes the receiving business sign swap deliveries
	// instead of the root account.
	PayoutFromBusiness bool

	RewardsEnabled bool
	SwapsEnabled   bool
}

// transferDeposit is the one yoctoNEAR that ft_transfer requires attached.
const transferDeposit = "1"

func (s Settings) businessAccount(name string) domain.Identity {
	return domain.DeriveAccountName(name, s.RootAccount.String())
}
