package model

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// StringList maps a jsonb array column to []string.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.Errorf("StringList: unsupported type %T", src)
	}
}

// NullString is sql.NullString that marshals as the bare value or null.
type NullString struct{ sql.NullString }

func (n NullString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.String)
}

func (n *NullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Valid = false
		return nil
	}
	n.Valid = true
	return json.Unmarshal(data, &n.String)
}

type NullTime struct{ sql.NullTime }

func (n NullTime) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time)
}

func (n *NullTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Valid = false
		return nil
	}
	n.Valid = true
	return json.Unmarshal(data, &n.Time)
}

type NullInt32 struct{ sql.NullInt32 }

func (n NullInt32) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Int32)
}

func (n *NullInt32) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Valid = false
		return nil
	}
	n.Valid = true
	return json.Unmarshal(data, &n.Int32)
}

type Book struct {
	ID              int        `json:"id" db:"id"`
	GoogleBookID    NullString `json:"googleBookId" db:"google_book_id"`
	Title           string     `json:"title" db:"title"`
	Authors         StringList `json:"authors" db:"authors"`
	ISBN            NullString `json:"isbn" db:"isbn"`
	CoverURL        NullString `json:"coverUrl" db:"cover_url"`
	Description     NullString `json:"description" db:"description"`
	Pages           NullInt32  `json:"pages" db:"pages"`
	PublishedYear   NullInt32  `json:"publishedYear" db:"published_year"`
	Categories      StringList `json:"categories" db:"categories"`
	PreviewLink     NullString `json:"previewLink" db:"preview_link"`
	InfoLink        NullString `json:"infoLink" db:"info_link"`
	TotalCopies     int        `json:"totalCopies" db:"total_copies"`
	AvailableCopies int        `json:"availableCopies" db:"available_copies"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
}

// BookStats is a book row joined with its borrow counters for the admin view.
type BookStats struct {
	Book
	TotalBorrowed     int `json:"totalBorrowed" db:"total_borrowed"`
	CurrentlyBorrowed int `json:"currentlyBorrowed" db:"currently_borrowed"`
}

type User struct {
	ID                 int        `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	Email              string     `json:"email" db:"email"`
	Password           string     `json:"-" db:"password"`
	Phone              NullString `json:"phone" db:"phone"`
	IsActive           bool       `json:"isActive" db:"is_active"`
	EmailNotifications bool       `json:"emailNotifications" db:"email_notifications"`
	SMSNotifications   bool       `json:"smsNotifications" db:"sms_notifications"`
	ProfilePhoto       NullString `json:"profilePhoto" db:"profile_photo"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
}

type Admin struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"`
	Role     string `json:"role" db:"role"`
	IsActive bool   `json:"isActive" db:"is_active"`
}

type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "borrowed"
	StatusReturned BorrowStatus = "returned"
	// StatusOverdue is derived, never stored: borrowed with due_date in the past.
	StatusOverdue BorrowStatus = "overdue"
)

type Borrowing struct {
	ID               int          `json:"id" db:"id"`
	BorrowingUid     string       `json:"borrowingUid" db:"borrowing_uid"`
	UserID           int          `json:"userId" db:"user_id"`
	BookID           int          `json:"bookId" db:"book_id"`
	Status           BorrowStatus `json:"status" db:"status"`
	BorrowedAt       time.Time    `json:"borrowedAt" db:"borrowed_at"`
	DueDate          time.Time    `json:"dueDate" db:"due_date"`
	ReturnedAt       NullTime     `json:"returnedAt" db:"returned_at"`
	FineAmount       float64      `json:"fineAmount" db:"fine_amount"`
	RenewalCount     int          `json:"renewalCount" db:"renewal_count"`
	RenewalRequested bool         `json:"renewalRequested" db:"renewal_requested"`
	LastRenewalDate  NullTime     `json:"lastRenewalDate" db:"last_renewal_date"`
}

// BorrowingView joins user and book columns for listings; DisplayStatus and
// DaysOverdue are computed in SQL against the current date.
type BorrowingView struct {
	Borrowing
	UserName      string       `json:"userName" db:"user_name"`
	UserEmail     string       `json:"userEmail" db:"user_email"`
	BookTitle     string       `json:"bookTitle" db:"book_title"`
	BookAuthors   StringList   `json:"bookAuthors" db:"authors"`
	CoverURL      NullString   `json:"coverUrl" db:"cover_url"`
	DisplayStatus BorrowStatus `json:"displayStatus" db:"display_status"`
	DaysOverdue   int          `json:"daysOverdue" db:"days_overdue"`
}

// ReturnReceipt is what a successful return reports back.
type ReturnReceipt struct {
	BorrowingID int     `json:"borrowingId"`
	FineAmount  float64 `json:"fineAmount"`
	DaysOverdue int     `json:"daysOverdue"`
}

type NotificationLog struct {
	ID          int      `json:"id" db:"id"`
	UserID      int      `json:"userId" db:"user_id"`
	BorrowingID int      `json:"borrowingId" db:"borrowing_id"`
	Type        string   `json:"notificationType" db:"notification_type"`
	Message     string   `json:"message" db:"message"`
	Status      string   `json:"status" db:"status"`
	SentAt      NullTime `json:"sentAt" db:"sent_at"`
}

// CatalogEntry is a candidate book returned by the external catalog.
type CatalogEntry struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Cover         string   `json:"cover,omitempty"`
	Year          string   `json:"year"`
	Pages         int      `json:"pages,omitempty"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	ISBN          string   `json:"isbn,omitempty"`
	PreviewLink   string   `json:"previewLink,omitempty"`
	InfoLink      string   `json:"infoLink,omitempty"`
	CanonicalLink string   `json:"canonicalVolumeLink,omitempty"`
	WebReaderLink string   `json:"webReaderLink,omitempty"`
	Embeddable    bool     `json:"embeddable"`
	PublicDomain  bool     `json:"publicDomain"`
}

type CatalogSearchResult struct {
	Books      []CatalogEntry `json:"books"`
	TotalItems int            `json:"totalItems"`
	HasMore    bool           `json:"hasMore"`
}

type Stats struct {
	TotalBooks       int `json:"totalBooks"`
	TotalUsers       int `json:"totalUsers"`
	TotalBorrowings  int `json:"totalBorrowings"`
	ActiveBorrowings int `json:"activeBorrowings"`
	OverdueBooks     int `json:"overdueBooks"`
	ReturnedBooks    int `json:"returnedBooks"`
}

type BorrowRequest struct {
	BookID   int `json:"bookId" validate:"required"`
	LoanDays int `json:"loanDays" validate:"omitempty,min=1,max=90"`
}

type RenewRequest struct {
	BorrowingID   int `json:"borrowingId" validate:"required"`
	ExtensionDays int `json:"extensionDays" validate:"omitempty,min=1,max=90"`
}

type ImportBookRequest struct {
	GoogleBookID  string   `json:"googleBookId" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Authors       []string `json:"authors"`
	ISBN          string   `json:"isbn"`
	CoverURL      string   `json:"coverUrl"`
	Description   string   `json:"description"`
	Pages         int      `json:"pages"`
	PublishedYear int      `json:"publishedYear"`
	Categories    []string `json:"categories"`
	PreviewLink   string   `json:"previewLink"`
	InfoLink      string   `json:"infoLink"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UpdateProfileRequest struct {
	Name               string `json:"name" validate:"required"`
	Phone              string `json:"phone"`
	EmailNotifications *bool  `json:"emailNotifications"`
	SMSNotifications   *bool  `json:"smsNotifications"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"isActive"`
}

type AdjustCopiesRequest struct {
	TotalCopies int `json:"totalCopies" validate:"min=0"`
}

type ReminderRequest struct {
	UserID int `json:"userId" validate:"required"`
}
