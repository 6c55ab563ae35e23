package mockapi

import "net/http"

// DefaultTable returns the canned responses backing demo mode. Paths match
// what page code passes to the client, relative to the API base URL.
func DefaultTable() map[string]Endpoint {
	return map[string]Endpoint{
		"/users/me": {
			Success: true,
			Data: map[string]any{
				"id":        "demo-donor-0001",
				"name":      "Meera Shah",
				"email":     "donor@example.com",
				"role":      "donor",
				"city":      "Pune",
				"createdAt": "2025-01-15T09:00:00Z",
			},
		},
		"/ngos": {
			Success: true,
			Data: []map[string]any{
				{
					"id":       "ngo-001",
					"name":     "Helping Hands Trust",
					"city":     "Mumbai",
					"causes":   []string{"education", "healthcare"},
					"verified": true,
				},
				{
					"id":       "ngo-002",
					"name":     "Green Earth Foundation",
					"city":     "Bengaluru",
					"causes":   []string{"environment"},
					"verified": true,
				},
				{
					"id":       "ngo-003",
					"name":     "Annapurna Kitchen",
					"city":     "Delhi",
					"causes":   []string{"hunger"},
					"verified": false,
				},
			},
		},
		"/donations": {
			Success: true,
			Data: []map[string]any{
				{
					"id":     "don-101",
					"ngoId":  "ngo-001",
					"amount": 2500,
					"status": "completed",
					"date":   "2025-05-02T12:00:00Z",
				},
				{
					"id":     "don-102",
					"ngoId":  "ngo-002",
					"amount": 1000,
					"status": "completed",
					"date":   "2025-05-20T16:30:00Z",
				},
				{
					"id":     "don-103",
					"ngoId":  "ngo-001",
					"amount": 500,
					"status": "pending",
					"date":   "2025-06-01T09:15:00Z",
				},
			},
		},
		"/dashboard/stats": {
			Success: true,
			Data: map[string]any{
				"totalDonated":    4000,
				"donationCount":   3,
				"ngosSupported":   2,
				"volunteersHours": 0,
				"monthlyTrend":    []int{0, 1200, 800, 0, 3500, 500},
			},
		},
		"/campaigns": {
			Success: true,
			Data: []map[string]any{
				{
					"id":       "camp-01",
					"ngoId":    "ngo-002",
					"title":    "Plant 10,000 Trees",
					"goal":     500000,
					"raised":   312000,
					"deadline": "2025-09-30T00:00:00Z",
				},
				{
					"id":       "camp-02",
					"ngoId":    "ngo-003",
					"title":    "Meals for Monsoon",
					"goal":     200000,
					"raised":   45000,
					"deadline": "2025-08-15T00:00:00Z",
				},
			},
		},
		"/events": {
			Success: true,
			Data: []map[string]any{
				{
					"id":       "evt-11",
					"ngoId":    "ngo-001",
					"title":    "Weekend Teaching Drive",
					"city":     "Mumbai",
					"date":     "2025-07-12T04:30:00Z",
					"capacity": 40,
					"enrolled": 28,
				},
			},
		},
		"/notifications": {
			Success: true,
			Data: []map[string]any{
				{
					"id":      "ntf-1",
					"type":    "donation_receipt",
					"message": "Your donation of ₹2,500 to Helping Hands Trust was received.",
					"read":    true,
				},
				{
					"id":      "ntf-2",
					"type":    "campaign_update",
					"message": "Plant 10,000 Trees reached 60% of its goal.",
					"read":    false,
				},
			},
		},
		// Admin surfaces are not modeled offline; they answer 401 so the
		// pipeline's demo-auth branch gets exercised instead of a refresh.
		"/admin/users": {
			Status:  http.StatusUnauthorized,
			Success: false,
			Message: "admin access requires a live session",
		},
		"/admin/reports": {
			Status:  http.StatusUnauthorized,
			Success: false,
			Message: "admin access requires a live session",
		},
	}
}
