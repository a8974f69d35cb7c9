package rotation

import (
	"errors"
	"testing"
	"time"

	"github.com/msalazar/tanda-service/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testParticipants(n int) []models.Participant {
	participants := make([]models.Participant, 0, n)
	for i := 1; i <= n; i++ {
		participants = append(participants, models.Participant{
			ID:       int64(i * 100),
			TandaID:  1,
			UserID:   int64(i),
			Position: i,
		})
	}
	return participants
}

func TestPlanWeeklyRotation(t *testing.T) {
	tanda := &models.Tanda{
		ID:                1,
		Amount:            500,
		Frequency:         models.FrequencyWeekly,
		ParticipantsCount: 3,
		StartDate:         date(2025, time.January, 1),
		DeliveryDate:      date(2025, time.January, 22),
		PaymentMode:       models.ModeIntermediary,
	}

	cycles, err := Plan(tanda, testParticipants(3))
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	want := []struct {
		due      time.Time
		position int
	}{
		{date(2025, time.January, 1), 1},
		{date(2025, time.January, 8), 2},
		{date(2025, time.January, 15), 3},
		{date(2025, time.January, 22), 1},
	}
	if len(cycles) != len(want) {
		t.Fatalf("got %d cycles, want %d", len(cycles), len(want))
	}
	for i, w := range want {
		if !cycles[i].DueDate.Equal(w.due) {
			t.Errorf("cycle %d due date = %v, want %v", i, cycles[i].DueDate, w.due)
		}
		if cycles[i].Recipient.Position != w.position {
			t.Errorf("cycle %d recipient position = %d, want %d", i, cycles[i].Recipient.Position, w.position)
		}
	}
}

func TestPlanDueDateProgression(t *testing.T) {
	tests := []struct {
		name      string
		frequency models.Frequency
		start     time.Time
		delivery  time.Time
		wantDue   []time.Time
	}{
		{
			name:      "biweekly",
			frequency: models.FrequencyBiweekly,
			start:     date(2025, time.March, 3),
			delivery:  date(2025, time.March, 31),
			wantDue: []time.Time{
				date(2025, time.March, 3),
				date(2025, time.March, 17),
				date(2025, time.March, 31),
			},
		},
		{
			name:      "monthly clamps to end of month",
			frequency: models.FrequencyMonthly,
			start:     date(2025, time.January, 31),
			delivery:  date(2025, time.April, 30),
			wantDue: []time.Time{
				date(2025, time.January, 31),
				date(2025, time.February, 28),
				date(2025, time.March, 31),
				date(2025, time.April, 30),
			},
		},
		{
			name:      "monthly clamp in leap year",
			frequency: models.FrequencyMonthly,
			start:     date(2024, time.January, 31),
			delivery:  date(2024, time.February, 29),
			wantDue: []time.Time{
				date(2024, time.January, 31),
				date(2024, time.February, 29),
			},
		},
		{
			name:      "stops after delivery date",
			frequency: models.FrequencyWeekly,
			start:     date(2025, time.June, 2),
			delivery:  date(2025, time.June, 10),
			wantDue: []time.Time{
				date(2025, time.June, 2),
				date(2025, time.June, 9),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tanda := &models.Tanda{
				Frequency:         tt.frequency,
				ParticipantsCount: 2,
				StartDate:         tt.start,
				DeliveryDate:      tt.delivery,
				PaymentMode:       models.ModeIntermediary,
			}
			cycles, err := Plan(tanda, testParticipants(2))
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if len(cycles) != len(tt.wantDue) {
				t.Fatalf("got %d cycles, want %d", len(cycles), len(tt.wantDue))
			}
			for i, want := range tt.wantDue {
				if !cycles[i].DueDate.Equal(want) {
					t.Errorf("cycle %d due date = %v, want %v", i, cycles[i].DueDate, want)
				}
			}
		})
	}
}

func TestPlanParticipantMismatch(t *testing.T) {
	tests := []struct {
		name         string
		count        int
		participants []models.Participant
	}{
		{
			name:         "fewer rows than configured",
			count:        3,
			participants: testParticipants(2),
		},
		{
			name:  "duplicate position",
			count: 2,
			participants: []models.Participant{
				{ID: 100, UserID: 1, Position: 1},
				{ID: 200, UserID: 2, Position: 1},
			},
		},
		{
			name:  "position out of range",
			count: 2,
			participants: []models.Participant{
				{ID: 100, UserID: 1, Position: 1},
				{ID: 200, UserID: 2, Position: 5},
			},
		},
		{
			name:         "zero participants",
			count:        0,
			participants: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tanda := &models.Tanda{
				Frequency:         models.FrequencyWeekly,
				ParticipantsCount: tt.count,
				StartDate:         date(2025, time.January, 1),
				DeliveryDate:      date(2025, time.February, 1),
			}
			_, err := Plan(tanda, tt.participants)
			if !errors.Is(err, models.ErrParticipantCountMismatch) {
				t.Errorf("Plan() error = %v, want ErrParticipantCountMismatch", err)
			}
		})
	}
}

func TestBuildPaymentsIntermediary(t *testing.T) {
	tanda := &models.Tanda{
		ID:                1,
		Amount:            500,
		Frequency:         models.FrequencyWeekly,
		ParticipantsCount: 3,
		StartDate:         date(2025, time.January, 1),
		DeliveryDate:      date(2025, time.January, 22),
		PaymentMode:       models.ModeIntermediary,
	}
	participants := testParticipants(3)

	cycles, err := Plan(tanda, participants)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	payments := BuildPayments(tanda, participants, cycles)

	// Every participant pays every cycle.
	if want := len(cycles) * len(participants); len(payments) != want {
		t.Fatalf("got %d payments, want %d", len(payments), want)
	}
	perDate := map[time.Time]int{}
	for _, p := range payments {
		perDate[p.DueDate]++
		if p.Status != models.StatusPending {
			t.Errorf("payment status = %q, want pending", p.Status)
		}
		if p.AmountSnapshot != 500 {
			t.Errorf("amount snapshot = %v, want 500", p.AmountSnapshot)
		}
		if p.RecipientUserID != nil {
			t.Errorf("intermediary payment carries recipient user %d", *p.RecipientUserID)
		}
	}
	for due, n := range perDate {
		if n != tanda.ParticipantsCount {
			t.Errorf("due date %v has %d payments, want %d", due, n, tanda.ParticipantsCount)
		}
	}
}

func TestBuildPaymentsDirectSkipsRecipient(t *testing.T) {
	tanda := &models.Tanda{
		ID:                1,
		Amount:            500,
		Frequency:         models.FrequencyWeekly,
		ParticipantsCount: 3,
		StartDate:         date(2025, time.January, 1),
		DeliveryDate:      date(2025, time.January, 15),
		PaymentMode:       models.ModeDirect,
	}
	participants := testParticipants(3)

	cycles, err := Plan(tanda, participants)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	payments := BuildPayments(tanda, participants, cycles)

	if want := len(cycles) * (len(participants) - 1); len(payments) != want {
		t.Fatalf("got %d payments, want %d", len(payments), want)
	}
	recipientByDate := map[time.Time]models.Participant{}
	for _, c := range cycles {
		recipientByDate[c.DueDate] = c.Recipient
	}
	for _, p := range payments {
		recipient := recipientByDate[p.DueDate]
		if p.ParticipantID == recipient.ID {
			t.Errorf("recipient %d has a payment on its own cycle %v", recipient.ID, p.DueDate)
		}
		if p.RecipientUserID == nil || *p.RecipientUserID != recipient.UserID {
			t.Errorf("payment on %v missing recipient user %d", p.DueDate, recipient.UserID)
		}
	}
}

func TestBuildPaymentsClampsNegativeAmount(t *testing.T) {
	tanda := &models.Tanda{
		ID:                1,
		Amount:            -250,
		Frequency:         models.FrequencyWeekly,
		ParticipantsCount: 2,
		StartDate:         date(2025, time.January, 1),
		DeliveryDate:      date(2025, time.January, 1),
		PaymentMode:       models.ModeIntermediary,
	}
	participants := testParticipants(2)

	cycles, err := Plan(tanda, participants)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	for _, p := range BuildPayments(tanda, participants, cycles) {
		if p.AmountSnapshot != 0 {
			t.Errorf("amount snapshot = %v, want 0", p.AmountSnapshot)
		}
	}
}
