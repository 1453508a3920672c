package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shopharness/internal/engine"
	"shopharness/internal/massorder"
)

func TestWriteRunResults(t *testing.T) {
	var buf bytes.Buffer
	WriteRunResults(&buf, []*engine.RunResult{
		{ContractID: "TC-CART-001", Outcome: engine.OutcomePassed, Duration: 3 * time.Second},
		{ContractID: "TC-CART-002", Outcome: engine.OutcomeFailed, FailedStep: 2,
			Message: "expected one line item", Duration: time.Second},
	})

	out := buf.String()
	assert.Contains(t, out, "TC-CART-001")
	assert.Contains(t, out, "step 2: expected one line item")
	assert.Contains(t, out, "1/2 passed")
}

func TestWriteCampaignReport(t *testing.T) {
	report := massorder.Aggregate([]*engine.RunResult{
		{ContractID: string(massorder.GuestPost), Outcome: engine.OutcomePassed, Duration: 2 * time.Second},
		{ContractID: string(massorder.GuestFreight), Outcome: engine.OutcomeErrored,
			ErrorClass: "timeout", Message: "finish page not reached"},
	}, time.Minute)

	var buf bytes.Buffer
	WriteCampaignReport(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "Success rate")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "guest_post")
	assert.Contains(t, out, "guest_freight")
	assert.Contains(t, out, "finish page not reached")
}
