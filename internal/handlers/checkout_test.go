package handlers

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func TestNewOrderRef(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ref := newOrderRef()
		if !strings.HasPrefix(ref, "TLX-") {
			t.Fatalf("ref %q missing prefix", ref)
		}
		if len(ref) != len("TLX-")+10 {
			t.Fatalf("ref %q has wrong length", ref)
		}
		if ref != strings.ToUpper(ref) {
			t.Fatalf("ref %q not uppercase", ref)
		}
		if seen[ref] {
			t.Fatalf("ref %q repeated", ref)
		}
		seen[ref] = true
	}
}

func TestCouponClaimRefusesRepeatRedemption(t *testing.T) {
	couponID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	filter, update := couponClaim(couponID, userID)

	if filter["_id"] != couponID {
		t.Fatalf("filter _id = %v, want %v", filter["_id"], couponID)
	}
	guard, ok := filter["usedBy"].(bson.M)
	if !ok || guard["$ne"] != userID {
		t.Fatalf("filter usedBy = %v, want $ne guard on the user", filter["usedBy"])
	}

	add, ok := update["$addToSet"].(bson.M)
	if !ok || add["usedBy"] != userID {
		t.Fatalf("update = %v, want $addToSet usedBy", update)
	}
}

func TestResolveAddressDefault(t *testing.T) {
	home := models.Address{ID: primitive.NewObjectID(), Name: "home"}
	work := models.Address{ID: primitive.NewObjectID(), Name: "work", IsDefault: true}
	user := models.User{Addresses: []models.Address{home, work}}

	addr, ok := resolveAddress(user, "")
	if !ok || addr.ID != work.ID {
		t.Fatalf("resolveAddress = %+v, %v; want default entry", addr, ok)
	}
}

func TestResolveAddressByID(t *testing.T) {
	home := models.Address{ID: primitive.NewObjectID(), Name: "home"}
	work := models.Address{ID: primitive.NewObjectID(), Name: "work", IsDefault: true}
	user := models.User{Addresses: []models.Address{home, work}}

	addr, ok := resolveAddress(user, home.ID.Hex())
	if !ok || addr.ID != home.ID {
		t.Fatalf("resolveAddress = %+v, %v; want the requested entry", addr, ok)
	}
}

func TestResolveAddressMisses(t *testing.T) {
	user := models.User{Addresses: []models.Address{{ID: primitive.NewObjectID()}}}

	if _, ok := resolveAddress(user, primitive.NewObjectID().Hex()); ok {
		t.Error("unknown address id should not resolve")
	}
	if _, ok := resolveAddress(user, "zzz"); ok {
		t.Error("malformed address id should not resolve")
	}
	if _, ok := resolveAddress(models.User{}, ""); ok {
		t.Error("empty address book should not resolve")
	}
}
