package signing

import "github.com/betbot/orderly/clob/types"

const (
	// DomainName EIP-712 domain name
	DomainName = "Orderly"

	// DomainVersion EIP-712 domain version
	DomainVersion = "1"

	// OffChainVerifyingContract verifying contract for registration and key announcement
	OffChainVerifyingContract = "0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"

	// OnChainVerifyingContractMainnet verifying contract for withdrawals on mainnet
	OnChainVerifyingContractMainnet = "0x6F7a338F2aA472838dEFD3283eB360d4Dff5D203"

	// OnChainVerifyingContractTestnet verifying contract for withdrawals on testnet
	OnChainVerifyingContractTestnet = "0x1826B75e2ef249173FC735149AE4B8e9ea10abff"
)

// Primary type names
const (
	PrimaryTypeRegistration  = "Registration"
	PrimaryTypeAddOrderlyKey = "AddOrderlyKey"
	PrimaryTypeWithdraw      = "Withdraw"
)

// OnChainVerifyingContract returns the withdraw verifying contract of a network.
func OnChainVerifyingContract(network types.Network) string {
	if network == types.NetworkTestnet {
		return OnChainVerifyingContractTestnet
	}
	return OnChainVerifyingContractMainnet
}
