package core

import (
	"strconv"

	"lending/pkg/number"
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrInvalidArgument invalid argument
	ErrInvalidArgument ErrorCode = 100001
	// ErrInvalidAmount zero or out of range amount
	ErrInvalidAmount ErrorCode = 100002
	// ErrInvalidConfig reserve config rejected by validation
	ErrInvalidConfig ErrorCode = 100003
	// ErrInvalidOraclePrice oracle reported a zero or unusable price
	ErrInvalidOraclePrice ErrorCode = 100004

	// ErrUnauthorized signer holds no authority for the operation
	ErrUnauthorized ErrorCode = 100100
	// ErrUnauthorizedFeeChange market owner tried to change fee fields
	ErrUnauthorizedFeeChange ErrorCode = 100101
	// ErrObligationNotOwnedBySigner obligation owner mismatch
	ErrObligationNotOwnedBySigner ErrorCode = 100102
	// ErrNotWhitelistedLiquidator market only accepts the whitelisted liquidator
	ErrNotWhitelistedLiquidator ErrorCode = 100103

	// ErrReserveStale reserve needs a refresh
	ErrReserveStale ErrorCode = 100200
	// ErrObligationStale obligation needs a refresh
	ErrObligationStale ErrorCode = 100201

	// ErrInsufficientLiquidity not enough available liquidity
	ErrInsufficientLiquidity ErrorCode = 100300
	// ErrDepositedOverLimit deposit limit exceeded
	ErrDepositedOverLimit ErrorCode = 100301
	// ErrBorrowedOverLimit borrow limit exceeded
	ErrBorrowedOverLimit ErrorCode = 100302
	// ErrRateLimitReached outflow rate limit reached
	ErrRateLimitReached ErrorCode = 100303
	// ErrBorrowAttributionLimitExceeded borrow attribution limit exceeded
	ErrBorrowAttributionLimitExceeded ErrorCode = 100304
	// ErrObligationReserveLimit too many reserves in one obligation
	ErrObligationReserveLimit ErrorCode = 100305
	// ErrBorrowTooLarge borrow exceeds the remaining borrow value
	ErrBorrowTooLarge ErrorCode = 100306
	// ErrBorrowTooSmall fee would consume the whole borrow
	ErrBorrowTooSmall ErrorCode = 100307
	// ErrWithdrawTooLarge nothing can be withdrawn
	ErrWithdrawTooLarge ErrorCode = 100308
	// ErrRepayTooSmall repay amount rounds to zero
	ErrRepayTooSmall ErrorCode = 100309
	// ErrLiquidationTooSmall liquidation seizes nothing
	ErrLiquidationTooSmall ErrorCode = 100310
	// ErrInsufficientBalance ledger account holds less than the amount moved
	ErrInsufficientBalance ErrorCode = 100311

	// ErrInvalidLendingMarketAccount market mismatch
	ErrInvalidLendingMarketAccount ErrorCode = 100400
	// ErrInvalidReserveLendingMarketMatch reserve does not belong to the market
	ErrInvalidReserveLendingMarketMatch ErrorCode = 100401
	// ErrInvalidAccountInput reserves passed to an operation do not match the obligation
	ErrInvalidAccountInput ErrorCode = 100402
	// ErrObligationDepositsEmpty obligation has no deposits
	ErrObligationDepositsEmpty ErrorCode = 100403
	// ErrObligationBorrowsEmpty obligation has no borrows
	ErrObligationBorrowsEmpty ErrorCode = 100404
	// ErrInvalidObligationCollateral collateral not found in the obligation
	ErrInvalidObligationCollateral ErrorCode = 100405
	// ErrInvalidObligationLiquidity liquidity not found in the obligation
	ErrInvalidObligationLiquidity ErrorCode = 100406
	// ErrObligationCollateralEmpty collateral deposit is zero
	ErrObligationCollateralEmpty ErrorCode = 100407
	// ErrNegativeInterestRate cumulative borrow rate decreased
	ErrNegativeInterestRate ErrorCode = 100408
	// ErrSlotLessThanWindowStart rate limiter clock went backwards
	ErrSlotLessThanWindowStart ErrorCode = 100409
	// ErrIsolatedTierAssetViolation isolated asset borrowed alongside other borrows
	ErrIsolatedTierAssetViolation ErrorCode = 100410

	// ErrObligationHealthy obligation cannot be liquidated
	ErrObligationHealthy ErrorCode = 100500

	// ErrMarketNotFound no market
	ErrMarketNotFound ErrorCode = 100600
	// ErrReserveNotFound no reserve
	ErrReserveNotFound ErrorCode = 100601
	// ErrObligationNotFound no obligation
	ErrObligationNotFound ErrorCode = 100602
)

// arithmetic errors are raised by number.Decimal
var (
	ErrMathOverflow   = number.ErrMathOverflow
	ErrDivisionByZero = number.ErrDivisionByZero
)

var errorMessages = map[ErrorCode]string{
	ErrUnknown:                          "unknown error",
	ErrInvalidArgument:                  "invalid argument",
	ErrInvalidAmount:                    "invalid amount",
	ErrInvalidConfig:                    "invalid reserve config",
	ErrInvalidOraclePrice:               "invalid oracle price",
	ErrUnauthorized:                     "signer is not authorized",
	ErrUnauthorizedFeeChange:            "fee fields can only be changed by the fee authority",
	ErrObligationNotOwnedBySigner:       "obligation is not owned by signer",
	ErrNotWhitelistedLiquidator:         "liquidator is not whitelisted",
	ErrReserveStale:                     "reserve is stale and must be refreshed",
	ErrObligationStale:                  "obligation is stale and must be refreshed",
	ErrInsufficientLiquidity:            "insufficient liquidity available",
	ErrDepositedOverLimit:               "deposit limit exceeded",
	ErrBorrowedOverLimit:                "borrow limit exceeded",
	ErrRateLimitReached:                 "outflow rate limit reached",
	ErrBorrowAttributionLimitExceeded:   "borrow attribution limit exceeded",
	ErrObligationReserveLimit:           "obligation reserve limit exceeded",
	ErrBorrowTooLarge:                   "borrow amount too large",
	ErrBorrowTooSmall:                   "borrow amount too small to pay fees",
	ErrWithdrawTooLarge:                 "withdraw amount too large",
	ErrRepayTooSmall:                    "repay amount too small",
	ErrLiquidationTooSmall:              "liquidation amount too small",
	ErrInsufficientBalance:              "insufficient ledger balance",
	ErrInvalidLendingMarketAccount:      "invalid lending market",
	ErrInvalidReserveLendingMarketMatch: "reserve does not belong to lending market",
	ErrInvalidAccountInput:              "reserves do not match obligation",
	ErrObligationDepositsEmpty:          "obligation has no deposits",
	ErrObligationBorrowsEmpty:           "obligation has no borrows",
	ErrInvalidObligationCollateral:      "invalid obligation collateral",
	ErrInvalidObligationLiquidity:       "invalid obligation liquidity",
	ErrObligationCollateralEmpty:        "obligation collateral is empty",
	ErrNegativeInterestRate:             "interest rate is negative",
	ErrSlotLessThanWindowStart:          "current slot is less than window start",
	ErrIsolatedTierAssetViolation:       "isolated tier asset cannot be borrowed with other assets",
	ErrObligationHealthy:                "obligation is healthy and cannot be liquidated",
	ErrMarketNotFound:                   "lending market not found",
	ErrReserveNotFound:                  "reserve not found",
	ErrObligationNotFound:               "obligation not found",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return e.String()
}

// Code numeric code
func (e ErrorCode) Code() int {
	return int(e)
}
