// Package notice renders the text of invitation and activity records.
package notice

import (
	"fmt"
	"time"

	"quorum-booking/core/constants"
	"quorum-booking/modules/booking/entity"
)

// Context carries the booking details shared by every message.
type Context struct {
	ResourceName string
	Date         string
	TimeSlot     string
}

func ContextOf(b entity.Booking) Context {
	return Context{ResourceName: b.ResourceName, Date: b.Date, TimeSlot: b.TimeSlot}
}

func (c Context) where() string {
	return fmt.Sprintf("%s on %s at %s", c.ResourceName, DisplayDate(c.Date), c.TimeSlot)
}

// DisplayDate turns 2025-09-20 into 9/20/2025. Unparseable input is returned as is.
func DisplayDate(date string) string {
	t, err := time.Parse(constants.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(constants.DisplayDateLayout)
}

func verb(decision entity.InvitationStatus) string {
	if decision == entity.InvitationStatusAccepted {
		return "accepted"
	}
	return "declined"
}

func Invite(organizerName string) string {
	return fmt.Sprintf("%s has invited you to a discussion room booking", organizerName)
}

// ResponseToOrganizer tells the organizer how a member answered.
func ResponseToOrganizer(actorName string, decision entity.InvitationStatus, c Context) string {
	return fmt.Sprintf("%s has %s your invitation for %s", actorName, verb(decision), c.where())
}

// ResponseToSelf confirms a member's own answer.
func ResponseToSelf(decision entity.InvitationStatus, c Context, organizerName string) string {
	return fmt.Sprintf("You %s the invitation for %s organized by %s", verb(decision), c.where(), organizerName)
}

func Cancelled(organizerName string, c Context) string {
	return fmt.Sprintf("%s has cancelled the booking for %s", organizerName, c.where())
}

func Left(actorName string, c Context) string {
	return fmt.Sprintf("%s has left the booking for %s", actorName, c.where())
}
