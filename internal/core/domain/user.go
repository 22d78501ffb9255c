package domain

import "time"

// Role is the side of the marketplace a user acts on.
type Role string

const (
	RoleSeeker   Role = "SEEKER"
	RoleProvider Role = "PROVIDER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleSeeker || r == RoleProvider
}

// User models an account. Role stays empty until the user chooses a side.
type User struct {
	ID           int64     `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         Role      `json:"role,omitempty" bson:"role,omitempty"`
	DisplayName  string    `json:"displayName,omitempty" bson:"display_name,omitempty"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone        string    `json:"phoneNumber,omitempty" bson:"phone,omitempty"`
	IsVerified   bool      `json:"isVerified" bson:"is_verified"`
	Rating       float64   `json:"rating" bson:"rating"`
	TotalReviews int       `json:"totalReviews" bson:"total_reviews"`
	HourlyRate   *float64  `json:"hourlyRate,omitempty" bson:"hourly_rate,omitempty"`
	Bio          string    `json:"bio,omitempty" bson:"bio,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

// IsProvider reports whether the user has chosen the provider role.
func (u *User) IsProvider() bool { return u.Role == RoleProvider }

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.HourlyRate != nil {
		rate := *u.HourlyRate
		c.HourlyRate = &rate
	}
	return &c
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	Role         *Role
	DisplayName  *string
	Email        *string
	Phone        *string
	IsVerified   *bool
	Rating       *float64
	TotalReviews *int
	HourlyRate   *float64
	Bio          *string
}

// Apply merges the non-nil fields of p into u.
func (p UserPatch) Apply(u *User) {
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.IsVerified != nil {
		u.IsVerified = *p.IsVerified
	}
	if p.Rating != nil {
		u.Rating = *p.Rating
	}
	if p.TotalReviews != nil {
		u.TotalReviews = *p.TotalReviews
	}
	if p.HourlyRate != nil {
		rate := *p.HourlyRate
		u.HourlyRate = &rate
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
}
