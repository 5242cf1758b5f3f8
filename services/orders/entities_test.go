package main

import "testing"

func TestOrderStatusConstants(t *testing.T) {
	// Test that constants are defined correctly
	if OrderStatusSubmitted != "Submitted" {
		t.Errorf("Expected OrderStatusSubmitted to be 'Submitted', got %s", OrderStatusSubmitted)
	}
	if OrderStatusProcessing != "Processing" {
		t.Errorf("Expected OrderStatusProcessing to be 'Processing', got %s", OrderStatusProcessing)
	}
	if OrderStatusCompleted != "Completed" {
		t.Errorf("Expected OrderStatusCompleted to be 'Completed', got %s", OrderStatusCompleted)
	}
	if OrderStatusCancelled != "Cancelled" {
		t.Errorf("Expected OrderStatusCancelled to be 'Cancelled', got %s", OrderStatusCancelled)
	}
}

func TestValidOrderStatus(t *testing.T) {
	valid := []string{OrderStatusSubmitted, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled}
	for _, s := range valid {
		if !ValidOrderStatus(s) {
			t.Errorf("Expected %s to be a valid status", s)
		}
	}

	invalid := []string{"", "Shipped", "processing", "COMPLETED"}
	for _, s := range invalid {
		if ValidOrderStatus(s) {
			t.Errorf("Expected %q to be rejected", s)
		}
	}
}

func TestTerminalOrderStatus(t *testing.T) {
	if !TerminalOrderStatus(OrderStatusCompleted) {
		t.Error("Expected Completed to be terminal")
	}
	if !TerminalOrderStatus(OrderStatusCancelled) {
		t.Error("Expected Cancelled to be terminal")
	}
	if TerminalOrderStatus(OrderStatusSubmitted) {
		t.Error("Expected Submitted to be non-terminal")
	}
	if TerminalOrderStatus(OrderStatusProcessing) {
		t.Error("Expected Processing to be non-terminal")
	}
}

func TestCustomerFullName(t *testing.T) {
	customer := Customer{Name: "Ana", Surname: "Silva"}
	if customer.FullName() != "Ana Silva" {
		t.Errorf("Expected 'Ana Silva', got %s", customer.FullName())
	}
}
