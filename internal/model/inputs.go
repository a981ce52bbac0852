package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Inputs is the full input tuple of one engine run.
type Inputs struct {
	Capital   CapitalInputs        `json:"capital"`
	Operating OperatingAssumptions `json:"operating"`
	Debt      DebtAssumptions      `json:"debt"`
	Exit      ExitAssumptions      `json:"exit"`
}

func NewInputs(capital CapitalInputs, operating OperatingAssumptions, debt DebtAssumptions, exit ExitAssumptions) (Inputs, error) {
	in := Inputs{
		Capital:   capital,
		Operating: operating.Clone(),
		Debt:      debt,
		Exit:      exit,
	}
	if err := in.Validate(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

func (in Inputs) Validate() error {
	if err := in.Capital.Validate(); err != nil {
		return fmt.Errorf("capital: %w", err)
	}
	if err := in.Operating.Validate(); err != nil {
		return fmt.Errorf("operating: %w", err)
	}
	if err := in.Debt.Validate(); err != nil {
		return fmt.Errorf("debt: %w", err)
	}
	if err := in.Exit.Validate(); err != nil {
		return fmt.Errorf("exit: %w", err)
	}
	return nil
}

func (in Inputs) HoldPeriod() int { return in.Operating.HoldPeriod() }

// Clone returns a deep copy.
func (in Inputs) Clone() Inputs {
	in.Operating = in.Operating.Clone()
	return in
}

// Key returns a deterministic hash of every user-controlled scalar.
// Fields derived by the engine (initial debt, revenue CAGR) are excluded.
func (in Inputs) Key() string {
	c := in.Clone()
	c.Debt.InitialDebt = 0
	c.Exit.RevenueCAGR = 0
	raw, err := json.Marshal(c)
	if err != nil {
		// Only non-finite floats fail to marshal; %v still distinguishes them.
		raw = []byte(fmt.Sprintf("%v", c))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
