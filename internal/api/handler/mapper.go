package handler

import (
	"strconv"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:           u.ID,
		Username:     u.Username,
		Role:         string(u.Role),
		DisplayName:  u.DisplayName,
		Email:        u.Email,
		Phone:        u.Phone,
		IsVerified:   u.IsVerified,
		Rating:       u.Rating,
		TotalReviews: u.TotalReviews,
		HourlyRate:   u.HourlyRate,
		Bio:          u.Bio,
		CreatedAt:    u.CreatedAt,
	}
}

func toCoordinatesResponse(c *domain.Coordinates) *coordinatesResponse {
	if c == nil {
		return nil
	}
	return &coordinatesResponse{Lat: c.Lat, Lon: c.Lon}
}

func (c *coordinatesRequest) toDomain() *domain.Coordinates {
	if c == nil {
		return nil
	}
	return &domain.Coordinates{Lat: c.Lat, Lon: c.Lon}
}

func toCareRequestResponse(r *domain.CareRequest) careRequestResponse {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return careRequestResponse{
		ID:              r.ID,
		SeekerID:        r.SeekerID,
		ProviderID:      r.ProviderID,
		Description:     r.Description,
		Summary:         r.Summary,
		Tags:            tags,
		Status:          string(r.Status),
		DurationMinutes: r.DurationMinutes,
		EstimatedCost:   r.EstimatedCost,
		Location:        r.Location,
		Coordinates:     toCoordinatesResponse(r.Coordinates),
		ScheduledFor:    r.ScheduledFor,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Links:           careRequestLinks{Self: "/api/care-requests/" + strconv.FormatInt(r.ID, 10)},
	}
}

func toCareRequestList(reqs []*domain.CareRequest) careRequestListResponse {
	items := make([]careRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, toCareRequestResponse(r))
	}
	return careRequestListResponse{Items: items, Count: len(items)}
}

func toProviderStatusResponse(s *domain.ProviderStatus) providerStatusResponse {
	return providerStatusResponse{
		UserID:      s.UserID,
		IsOnline:    s.IsOnline,
		Location:    toCoordinatesResponse(s.Location),
		LastUpdated: s.LastUpdated,
	}
}

func toAvailableProviders(list []ports.AvailableProvider) availableProvidersResponse {
	items := make([]availableProviderResponse, 0, len(list))
	for _, p := range list {
		items = append(items, availableProviderResponse{
			ID:            p.Provider.ID,
			DisplayName:   p.Provider.DisplayName,
			Bio:           p.Provider.Bio,
			IsVerified:    p.Provider.IsVerified,
			Rating:        p.Provider.Rating,
			TotalReviews:  p.Provider.TotalReviews,
			HourlyRate:    p.Provider.HourlyRate,
			Location:      toCoordinatesResponse(p.Status.Location),
			LastUpdated:   p.Status.LastUpdated,
			DistanceMiles: p.DistanceMiles,
		})
	}
	return availableProvidersResponse{Items: items, Count: len(items)}
}
