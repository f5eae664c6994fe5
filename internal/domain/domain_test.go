package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Role Validation Tests
// ============================================================================

func TestValidRoles_ContainsAll(t *testing.T) {
	roles := ValidRoles()
	expected := []string{RoleUser, RoleStaff, RoleAdmin}
	assert.ElementsMatch(t, expected, roles)
}

func TestIsValidRole_ValidRoles(t *testing.T) {
	for _, r := range ValidRoles() {
		assert.True(t, IsValidRole(r), "expected %q to be valid", r)
	}
}

func TestIsValidRole_Invalid(t *testing.T) {
	assert.False(t, IsValidRole("unknown"))
	assert.False(t, IsValidRole(""))
	assert.False(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole("superadmin"))
}

// ============================================================================
// User Tests
// ============================================================================

func TestUser_CanLogin(t *testing.T) {
	u := User{PasswordHash: "hash"}
	assert.True(t, u.CanLogin())
}

func TestUser_CanLogin_Blocked(t *testing.T) {
	u := User{PasswordHash: "hash", IsBlocked: true}
	assert.False(t, u.CanLogin())
}

func TestUser_CanLogin_GoogleOnly(t *testing.T) {
	// Accounts created via Google login have no password hash.
	u := User{GoogleID: "google-123"}
	assert.False(t, u.CanLogin())
}

func TestUser_HasLiveResetTicket(t *testing.T) {
	now := time.Now().UTC()
	expiry := now.Add(15 * time.Minute)
	u := User{ResetTokenHash: "hash", ResetTokenExpiry: &expiry}
	assert.True(t, u.HasLiveResetTicket(now))
}

func TestUser_HasLiveResetTicket_Expired(t *testing.T) {
	now := time.Now().UTC()
	expiry := now.Add(-time.Minute)
	u := User{ResetTokenHash: "hash", ResetTokenExpiry: &expiry}
	assert.False(t, u.HasLiveResetTicket(now))
}

func TestUser_HasLiveResetTicket_NoTicket(t *testing.T) {
	u := User{}
	assert.False(t, u.HasLiveResetTicket(time.Now().UTC()))
}

// ============================================================================
// Staff Tests
// ============================================================================

func TestStaff_IsLoginable(t *testing.T) {
	s := Staff{IsRegistered: true, Status: StaffStatusActive}
	assert.True(t, s.IsLoginable())
}

func TestStaff_IsLoginable_Deactivated(t *testing.T) {
	s := Staff{IsRegistered: true, Status: StaffStatusDeactivated}
	assert.False(t, s.IsLoginable())
}

func TestStaff_IsLoginable_PendingApproval(t *testing.T) {
	s := Staff{IsRegistered: true, Status: StaffStatusPending}
	assert.False(t, s.IsLoginable())
}

func TestStaff_IsLoginable_InvitedNotRegistered(t *testing.T) {
	s := Staff{Status: StaffStatusInvited}
	assert.False(t, s.IsLoginable())
}

func TestValidStaffStatus(t *testing.T) {
	assert.True(t, ValidStaffStatus(StaffStatusActive))
	assert.True(t, ValidStaffStatus(StaffStatusDeactivated))
	assert.False(t, ValidStaffStatus("fired"))
	assert.False(t, ValidStaffStatus(""))
}

// ============================================================================
// Principal Tests
// ============================================================================

func TestPrincipalFromUser(t *testing.T) {
	u := &User{ID: "u1", Email: "a@b.com", Name: "Alice", Role: RoleUser}
	p := PrincipalFromUser(u)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, PrincipalKindUser, p.Kind)
	assert.False(t, p.IsAdmin())
}

func TestPrincipalFromStaff(t *testing.T) {
	s := &Staff{ID: "s1", Email: "s@b.com", Name: "Bob", Role: RoleStaff}
	p := PrincipalFromStaff(s)
	assert.Equal(t, "s1", p.ID)
	assert.Equal(t, PrincipalKindStaff, p.Kind)
}

func TestPrincipal_IsAdmin(t *testing.T) {
	p := Principal{Role: RoleAdmin}
	assert.True(t, p.IsAdmin())
}

// ============================================================================
// Cart Tests
// ============================================================================

func TestCart_AddItem_NewLine(t *testing.T) {
	c := Cart{UserID: "u1"}
	c.AddItem(CartItem{ProductID: "p1", Price: 10000, Quantity: 2})

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestCart_AddItem_MergesQuantity(t *testing.T) {
	c := Cart{UserID: "u1"}
	c.AddItem(CartItem{ProductID: "p1", Price: 10000, Quantity: 2})
	c.AddItem(CartItem{ProductID: "p1", Price: 10000, Quantity: 3})

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestCart_RemoveItem(t *testing.T) {
	c := Cart{Items: []CartItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 2},
	}}
	c.RemoveItem("p1")

	assert.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)
}

func TestCart_RemoveItem_Absent(t *testing.T) {
	c := Cart{Items: []CartItem{{ProductID: "p1", Quantity: 1}}}
	c.RemoveItem("p9")

	assert.Len(t, c.Items, 1)
}

func TestCart_TotalAmount(t *testing.T) {
	c := Cart{Items: []CartItem{
		{ProductID: "p1", Price: 10000, Quantity: 2},
		{ProductID: "p2", Price: 2500, Quantity: 4},
	}}
	assert.Equal(t, int64(30000), c.TotalAmount())
}

func TestCart_TotalAmount_Empty(t *testing.T) {
	c := Cart{}
	assert.Equal(t, int64(0), c.TotalAmount())
}

func TestCart_ItemCount(t *testing.T) {
	c := Cart{Items: []CartItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	}}
	assert.Equal(t, 5, c.ItemCount())
}

// ============================================================================
// Order Tests
// ============================================================================

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, OrderStatusPaid, InitialStatus(PaymentMethodOnline))
	assert.Equal(t, OrderStatusPending, InitialStatus(PaymentMethodCOD))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentMethodCOD))
	assert.True(t, ValidPaymentMethod(PaymentMethodOnline))
	assert.False(t, ValidPaymentMethod("card"))
	assert.False(t, ValidPaymentMethod(""))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusPending, OrderStatusPaid))
	assert.True(t, CanTransition(OrderStatusPaid, OrderStatusShipped))
	assert.True(t, CanTransition(OrderStatusShipped, OrderStatusDelivered))
	assert.False(t, CanTransition(OrderStatusPaid, OrderStatusPending))
	assert.False(t, CanTransition(OrderStatusDelivered, OrderStatusPending))
}

// ============================================================================
// Product Tests
// ============================================================================

func TestProduct_SellingPrice_Discounted(t *testing.T) {
	p := Product{Price: 20000, DiscountPrice: 15000}
	assert.Equal(t, int64(15000), p.SellingPrice())
}

func TestProduct_SellingPrice_NoDiscount(t *testing.T) {
	p := Product{Price: 20000}
	assert.Equal(t, int64(20000), p.SellingPrice())
}

// ============================================================================
// Leave Tests
// ============================================================================

func TestLeave_Days(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	l := Leave{FromDate: from, ToDate: to}
	assert.Equal(t, 3, l.Days())
}

func TestLeave_Days_SingleDay(t *testing.T) {
	d := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	l := Leave{FromDate: d, ToDate: d}
	assert.Equal(t, 1, l.Days())
}

func TestLeave_Days_InvertedRange(t *testing.T) {
	from := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	l := Leave{FromDate: from, ToDate: to}
	assert.Equal(t, 0, l.Days())
}

func TestValidDecision(t *testing.T) {
	assert.True(t, ValidDecision(DecisionApproved))
	assert.True(t, ValidDecision(DecisionRejected))
	assert.False(t, ValidDecision(DecisionPending))
	assert.False(t, ValidDecision(""))
}
