package attendance

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"class-records/common"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// The only credentials the tracker accepts.
const (
	ValidUsername = "student"
	ValidPassword = "password123"
)

const (
	MsgIncorrect = "Incorrect username or password"
	MsgNoRecords = "No records yet"
)

// ErrNoAttendance is returned by Summary when nothing has been logged.
var ErrNoAttendance = errors.New("No attendance records to save")

// LoginResult is the outcome of one login submission.
type LoginResult struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
	Receipt   string `json:"receipt,omitempty"`
	Beep      bool   `json:"beep"`
}

// Tracker owns the attendance log. It keeps no session state; every
// submission is judged on its own.
type Tracker struct {
	db           *gorm.DB
	passwordHash []byte
	signer       *Signer
	sinks        []Sink
	now          func() time.Time
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithSigner attaches receipts to successful logins.
func WithSigner(s *Signer) Option {
	return func(t *Tracker) { t.signer = s }
}

// WithSink mirrors every appended record to s.
func WithSink(s Sink) Option {
	return func(t *Tracker) { t.sinks = append(t.sinks, s) }
}

// NewTracker hashes the accepted password with the given bcrypt cost.
func NewTracker(db *gorm.DB, bcryptCost int, opts ...Option) (*Tracker, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(ValidPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	t := &Tracker{db: db, passwordHash: hash, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Tracker) passwordMatches(password string) bool {
	// bcrypt stops at a NUL byte and ignores input past 72 bytes, so those
	// passwords could collide with the real one.
	if len(password) > 72 || strings.IndexByte(password, 0) >= 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(t.passwordHash, []byte(password)) == nil
}

// Login checks the credentials. The username is trimmed, the password is
// compared as given. Only a match appends to the log.
func (t *Tracker) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(ValidUsername)) == 1
	if !userOK || !t.passwordMatches(password) {
		common.L().Warn("login rejected", zap.String("username", username))
		return LoginResult{Message: MsgIncorrect, Beep: true}, nil
	}

	at := t.now()
	rec := AttendanceModel{
		Username:  username,
		Timestamp: FormatTimestamp(at),
		CreatedAt: at,
	}
	if t.signer != nil {
		receipt, err := t.signer.Sign(rec.Username, rec.Timestamp, at)
		if err != nil {
			return LoginResult{}, err
		}
		rec.Receipt = receipt
	}
	if err := t.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return LoginResult{}, fmt.Errorf("failed to record attendance: %w", err)
	}

	for _, sink := range t.sinks {
		if err := sink.Append(ctx, rec); err != nil {
			common.L().Warn("attendance mirror failed", zap.Error(err))
		}
	}

	common.L().Info("attendance logged",
		zap.String("username", rec.Username),
		zap.String("timestamp", rec.Timestamp),
	)
	return LoginResult{
		OK:        true,
		Message:   "Welcome, " + username,
		Timestamp: rec.Timestamp,
		Receipt:   rec.Receipt,
	}, nil
}

// Records returns the log in append order.
func (t *Tracker) Records(ctx context.Context) ([]AttendanceModel, error) {
	var recs []AttendanceModel
	if err := t.db.WithContext(ctx).Order("seq ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return recs, nil
}

// Verify checks a receipt against the tracker's signer.
func (t *Tracker) Verify(receipt string) (*ReceiptClaims, error) {
	if t.signer == nil {
		return nil, ErrInvalidReceipt
	}
	return t.signer.Verify(receipt)
}

// Listing is the on-screen log.
func (t *Tracker) Listing(ctx context.Context) (string, error) {
	recs, err := t.Records(ctx)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return MsgNoRecords, nil
	}
	var b strings.Builder
	for i, rec := range recs {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". Username: ")
		b.WriteString(rec.Username)
		b.WriteString("\n   Timestamp: ")
		b.WriteString(rec.Timestamp)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// Summary is the body of attendance_summary.txt.
func (t *Tracker) Summary(ctx context.Context) (string, error) {
	recs, err := t.Records(ctx)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "", ErrNoAttendance
	}
	var b strings.Builder
	b.WriteString("Attendance Summary\n\n")
	for i, rec := range recs {
		fmt.Fprintf(&b, "%d. Username: %s\nTimestamp: %s\n\n", i+1, rec.Username, rec.Timestamp)
	}
	return b.String(), nil
}
