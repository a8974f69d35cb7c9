// Package rotation derives the cycle schedule of a tanda: the ordered
// due dates and the recipient of each cycle.
package rotation

import (
	"fmt"
	"sort"
	"time"

	"github.com/msalazar/tanda-service/internal/models"
)

// Cycle is one recurrence of the contribution schedule.
type Cycle struct {
	DueDate   time.Time
	Recipient models.Participant
}

// Plan computes the full cycle schedule for a tanda. Cycle k falls on
// the start date advanced by k periods; its recipient is the
// participant at position (k mod participants_count) + 1. Generation
// stops once the due date passes the delivery date.
//
// A participants_count that does not match the actual participant rows
// is a configuration error, not something to paper over:
// models.ErrParticipantCountMismatch is returned instead of an
// inconsistent schedule.
func Plan(tanda *models.Tanda, participants []models.Participant) ([]Cycle, error) {
	if !tanda.Frequency.Valid() {
		return nil, fmt.Errorf("unknown frequency %q", tanda.Frequency)
	}
	if err := checkPositions(tanda, participants); err != nil {
		return nil, err
	}

	byPosition := make(map[int]models.Participant, len(participants))
	for _, p := range participants {
		byPosition[p.Position] = p
	}

	var cycles []Cycle
	for k := 0; ; k++ {
		due := advance(tanda.StartDate, tanda.Frequency, k)
		if due.After(tanda.DeliveryDate) {
			break
		}
		cycles = append(cycles, Cycle{
			DueDate:   due,
			Recipient: byPosition[k%tanda.ParticipantsCount+1],
		})
	}
	return cycles, nil
}

// BuildPayments expands a schedule into the payment obligations it
// implies. Under intermediary mode every participant pays every cycle;
// under direct mode the cycle's recipient is skipped and each payment
// carries the recipient's user id so the payer knows who to pay.
// Amount snapshots are fixed here and clamped to >= 0.
func BuildPayments(tanda *models.Tanda, participants []models.Participant, cycles []Cycle) []models.Payment {
	ordered := make([]models.Participant, len(participants))
	copy(ordered, participants)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	var payments []models.Payment
	for _, cycle := range cycles {
		for _, p := range ordered {
			if tanda.PaymentMode == models.ModeDirect && p.ID == cycle.Recipient.ID {
				continue
			}
			payment := models.Payment{
				TandaID:       tanda.ID,
				ParticipantID: p.ID,
				DueDate:       cycle.DueDate,
				Status:        models.StatusPending,
			}
			payment.SetAmountSnapshot(tanda.Amount)
			if tanda.PaymentMode == models.ModeDirect {
				recipientUser := cycle.Recipient.UserID
				payment.RecipientUserID = &recipientUser
			}
			payments = append(payments, payment)
		}
	}
	return payments
}

func checkPositions(tanda *models.Tanda, participants []models.Participant) error {
	if tanda.ParticipantsCount <= 0 || len(participants) != tanda.ParticipantsCount {
		return models.ErrParticipantCountMismatch
	}
	seen := make(map[int]bool, len(participants))
	for _, p := range participants {
		if p.Position < 1 || p.Position > tanda.ParticipantsCount || seen[p.Position] {
			return models.ErrParticipantCountMismatch
		}
		seen[p.Position] = true
	}
	return nil
}

// advance moves a date forward by k periods of the given frequency.
// Monthly periods land on the same day of month, clamped to the last
// valid day when the start day does not exist (Jan 31 -> Feb 28/29).
func advance(start time.Time, freq models.Frequency, k int) time.Time {
	switch freq {
	case models.FrequencyWeekly:
		return start.AddDate(0, 0, 7*k)
	case models.FrequencyBiweekly:
		return start.AddDate(0, 0, 14*k)
	default:
		return addMonthsClamped(start, k)
	}
}

func addMonthsClamped(start time.Time, months int) time.Time {
	year, month, day := start.Date()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, start.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, start.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
