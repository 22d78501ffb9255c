package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Accounts ---

type registerRequest struct {
	Username    string `json:"username"    validate:"required,max=64"`
	Password    string `json:"password"    validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"max=128"`
	Email       string `json:"email"       validate:"omitempty,email"`
	Phone       string `json:"phoneNumber" validate:"max=32"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type chooseRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=SEEKER PROVIDER"`
}

type updateProfileRequest struct {
	DisplayName *string  `json:"displayName" validate:"omitempty,max=128"`
	Bio         *string  `json:"bio"         validate:"omitempty,max=2000"`
	Email       *string  `json:"email"       validate:"omitempty,email"`
	Phone       *string  `json:"phoneNumber" validate:"omitempty,max=32"`
	HourlyRate  *float64 `json:"hourlyRate"  validate:"omitempty,gte=0"`
}

type userResponse struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role,omitempty"`
	DisplayName  string    `json:"displayName,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phoneNumber,omitempty"`
	IsVerified   bool      `json:"isVerified"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"totalReviews"`
	HourlyRate   *float64  `json:"hourlyRate,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type authResponse struct {
	Token string        `json:"token,omitempty"`
	User  *userResponse `json:"user,omitempty"`
}

// --- Care requests ---

type coordinatesRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

type createCareRequestRequest struct {
	Description     string              `json:"description"     validate:"required,max=4000"`
	Location        string              `json:"location"        validate:"max=256"`
	Coordinates     *coordinatesRequest `json:"coordinates"`
	DurationMinutes *int                `json:"durationMinutes" validate:"omitempty,gt=0"`
	ScheduledFor    *time.Time          `json:"scheduledFor"`
}

type editCareRequestRequest struct {
	Description     *string             `json:"description"     validate:"omitempty,max=4000"`
	Location        *string             `json:"location"        validate:"omitempty,max=256"`
	Coordinates     *coordinatesRequest `json:"coordinates"`
	DurationMinutes *int                `json:"durationMinutes" validate:"omitempty,gt=0"`
	ScheduledFor    *time.Time          `json:"scheduledFor"`
}

type matchRequest struct {
	ProviderID int64 `json:"providerId" validate:"required,gt=0"`
}

type respondRequest struct {
	Decision string `json:"decision" validate:"required,oneof=ACCEPT DECLINE"`
}

type coordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type careRequestLinks struct {
	Self string `json:"self"`
}

type careRequestResponse struct {
	ID              int64                `json:"id"`
	SeekerID        int64                `json:"seekerId"`
	ProviderID      *int64               `json:"providerId"`
	Description     string               `json:"description"`
	Summary         string               `json:"summary"`
	Tags            []string             `json:"tags"`
	Status          string               `json:"status"`
	DurationMinutes *int                 `json:"durationMinutes,omitempty"`
	EstimatedCost   *float64             `json:"estimatedCost,omitempty"`
	Location        string               `json:"location,omitempty"`
	Coordinates     *coordinatesResponse `json:"coordinates,omitempty"`
	ScheduledFor    *time.Time           `json:"scheduledFor,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	Links           careRequestLinks     `json:"_links"`
}

type careRequestListResponse struct {
	Items []careRequestResponse `json:"items"`
	Count int                   `json:"count"`
}

// --- Providers ---

type providerStatusRequest struct {
	IsOnline *bool    `json:"isOnline" validate:"required"`
	Lat      *float64 `json:"lat"      validate:"omitempty,latitude"`
	Lon      *float64 `json:"lon"      validate:"omitempty,longitude"`
}

type providerStatusResponse struct {
	UserID      int64                `json:"userId"`
	IsOnline    bool                 `json:"isOnline"`
	Location    *coordinatesResponse `json:"location,omitempty"`
	LastUpdated time.Time            `json:"lastUpdated"`
}

type availableProviderResponse struct {
	ID            int64                `json:"id"`
	DisplayName   string               `json:"displayName"`
	Bio           string               `json:"bio,omitempty"`
	IsVerified    bool                 `json:"isVerified"`
	Rating        float64              `json:"rating"`
	TotalReviews  int                  `json:"totalReviews"`
	HourlyRate    *float64             `json:"hourlyRate,omitempty"`
	Location      *coordinatesResponse `json:"location,omitempty"`
	LastUpdated   time.Time            `json:"lastUpdated"`
	DistanceMiles *float64             `json:"distance"`
}

type availableProvidersResponse struct {
	Items []availableProviderResponse `json:"items"`
	Count int                         `json:"count"`
}
