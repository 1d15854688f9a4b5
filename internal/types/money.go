// README: Money value object for parking tariffs.
package types

import "fmt"

// Money is an amount in the currency's minor unit (kuruş, cents).
type Money struct {
	Amount   int64
	Currency string
}

// String renders the amount in major units, e.g. "45.00 TRY".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.Amount/100, m.Amount%100, m.Currency)
}
