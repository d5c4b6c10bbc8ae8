package services

import (
	"fmt"

	"github.com/yukikurage/membership-api/internal/notify"
)

func welcomeMessage(email string) notify.Message {
	return notify.NewMessage(email, "Thank you for signing up!", "Welcome to Our SaaS Platform")
}

func passwordResetMessage(email string) notify.Message {
	return notify.NewMessage(email, "Password reset", "Password reset successful")
}

// invitationMessage carries the temporary password only for users created by the invite.
func invitationMessage(email, orgName, tempPassword string) notify.Message {
	headline := fmt.Sprintf("You have been invited to %s", orgName)
	if tempPassword != "" {
		headline = fmt.Sprintf("%s. Your temporary password is %s and must be changed after signing in", headline, tempPassword)
	}
	return notify.NewMessage(email, "Member invited!", headline)
}

func roleUpdatedMessage(email, orgName, roleName string) notify.Message {
	return notify.NewMessage(email, "Member role updated!",
		fmt.Sprintf("Your role in %s is now %s", orgName, roleName))
}
