package domain

import "fmt"

// ConfirmReason is the audit tag of the debit made when an order is paid.
func ConfirmReason(orderID int) string {
	return fmt.Sprintf("orders:%d:confirm", orderID)
}

// SignupReason is the audit tag of the wallet-opening entry.
func SignupReason(userID int) string {
	return fmt.Sprintf("users:%d:signup", userID)
}
