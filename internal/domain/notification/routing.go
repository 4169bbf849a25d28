package notification

// ContactPoint holds the delivery addresses known for a recipient.
// Empty fields mean the corresponding channel has nowhere to deliver to.
type ContactPoint struct {
	Email string
	Phone string
}

// ChannelsFor returns the channel set eligible for a priority level.
// Unrecognized priorities route like LOW/NORMAL rather than failing.
func ChannelsFor(priority Priority) []Channel {
	switch priority {
	case PriorityCritical:
		return []Channel{ChannelEmail, ChannelSMS, ChannelInApp, ChannelPush}
	case PriorityHigh, PriorityMedium:
		return []Channel{ChannelEmail, ChannelInApp}
	default:
		return []Channel{ChannelInApp}
	}
}

// EligibleChannels computes the final delivery set for one dispatch:
// the priority's channel set intersected with the user's channel toggles
// and with the available contact points. CRITICAL ignores the toggles but
// still needs a contact point to attempt EMAIL or SMS.
func EligibleChannels(priority Priority, pref *Preference, contact ContactPoint) []Channel {
	bypassToggles := priority == PriorityCritical

	var eligible []Channel
	for _, ch := range ChannelsFor(priority) {
		switch ch {
		case ChannelEmail:
			if contact.Email == "" {
				continue
			}
			if bypassToggles || pref.EmailEnabled {
				eligible = append(eligible, ch)
			}
		case ChannelSMS:
			if contact.Phone == "" {
				continue
			}
			if bypassToggles || pref.SMSEnabled {
				eligible = append(eligible, ch)
			}
		case ChannelInApp:
			if bypassToggles || pref.InAppEnabled {
				eligible = append(eligible, ch)
			}
		case ChannelPush:
			if bypassToggles || pref.PushEnabled {
				eligible = append(eligible, ch)
			}
		}
	}
	return eligible
}

// ContainsChannel reports whether a channel set includes the given channel
func ContainsChannel(channels []Channel, ch Channel) bool {
	for _, c := range channels {
		if c == ch {
			return true
		}
	}
	return false
}
