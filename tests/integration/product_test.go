//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != seededProducts {
		t.Fatalf("expected %d products, got %d", seededProducts, len(products))
	}
}

func TestListProducts_DiscountedPrice(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var dupatta *productResponse
	for i := range products {
		if products[i].Name == "Zari Dupatta" {
			dupatta = &products[i]
			break
		}
	}
	if dupatta == nil {
		t.Fatal("product 'Zari Dupatta' not found")
	}

	// Base price 780, Monsoon Sale takes 20% off.
	if dupatta.Price != 780 {
		t.Errorf("price: got %v, want 780", dupatta.Price)
	}
	if dupatta.FinalPrice != 624 {
		t.Errorf("finalPrice: got %v, want 624", dupatta.FinalPrice)
	}
	if dupatta.DiscountID == nil {
		t.Error("discountId is null")
	}
}

func TestListProducts_LowBand(t *testing.T) {
	// Only the Ajrakh Stole (450) resolves below 500; every other
	// product lands in the mid or high band after discounts.
	resp := doGet(t, "/api/products?price=low")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 1 {
		t.Fatalf("expected 1 product in low band, got %d", len(products))
	}
	if products[0].Name != "Ajrakh Stole" {
		t.Errorf("name: got %q, want %q", products[0].Name, "Ajrakh Stole")
	}
}

func TestListProducts_SortByPrice(t *testing.T) {
	resp := doGet(t, "/api/products?sort=price-asc")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < 2 {
		t.Fatalf("expected at least 2 products, got %d", len(products))
	}
	for i := 1; i < len(products); i++ {
		if products[i].FinalPrice < products[i-1].FinalPrice {
			t.Fatalf("products not sorted: %v before %v",
				products[i-1].FinalPrice, products[i].FinalPrice)
		}
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/1")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != 1 {
		t.Errorf("id: got %d, want 1", product.ID)
	}
	if product.Name != "Ajrakh Stole" {
		t.Errorf("name: got %q, want %q", product.Name, "Ajrakh Stole")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestListFacets(t *testing.T) {
	resp := doGet(t, "/api/facets/categories")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	options := decodeJSON[[]struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}](t, resp)
	if len(options) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(options))
	}
}

func TestCouponPreview(t *testing.T) {
	resp := doGet(t, "/api/coupons/WELCOME15")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	rule := decodeJSON[struct {
		Name  string `json:"name"`
		Offer int    `json:"offer"`
	}](t, resp)
	if rule.Offer != 15 {
		t.Errorf("offer: got %d, want 15", rule.Offer)
	}
}
