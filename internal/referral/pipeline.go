package referral

import (
	"context"
	"fmt"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/store"
)

// creation is the state threaded through the pipeline for one item.
type creation struct {
	item       account.Item
	assignment Assignment
}

func (c *creation) result() account.Account {
	return c.item.Finalize(c.assignment.Beneficiary)
}

// step is one fallible stage of a creation.
type step struct {
	name string
	run  func(ctx context.Context, st store.Statements, c *creation) error
}

// pipeline is the required order. The count inside assign must see the row
// written by insert, and finalize must write what assign computed.
var pipeline = []step{
	{name: "insert", run: insertStep},
	{name: "assign", run: assignStep},
	{name: "finalize", run: finalizeStep},
}

// runPipeline runs every step in order against st, stopping at the first error.
func runPipeline(ctx context.Context, st store.Statements, item account.Item) (*creation, error) {
	c := &creation{item: item}
	for _, s := range pipeline {
		if err := s.run(ctx, st, c); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return c, nil
}

func insertStep(ctx context.Context, st store.Statements, c *creation) error {
	return st.InsertProvisional(ctx, c.item.AccountID, c.item.IntroducerID)
}

func assignStep(ctx context.Context, st store.Statements, c *creation) error {
	a, err := Assign(ctx, c.item.IntroducerID, st)
	if err != nil {
		return err
	}
	c.assignment = a
	return nil
}

func finalizeStep(ctx context.Context, st store.Statements, c *creation) error {
	return st.SetBeneficiary(ctx, c.item.AccountID, c.assignment.Beneficiary)
}
