package site

// Default is the profile used when no site file is configured.
func Default() Profile {
	return Profile{
		OwnerName: "Alex Morgan",
		Tagline:   "Software developer building useful, fun things for the web.",
		About: `I like building software that is both useful and fun, and I'm always curious
about how things work behind the scenes. Most of my projects start with a simple
idea and turn into a chance to learn something new.`,
		Email:          "hello@example.com",
		Phone:          "+1 555 010 0199",
		SMSNumber:      "15550100199",
		WhatsAppNumber: "15550100199",
		Location:       "Portland, Oregon, USA",
		LocationURL:    "https://maps.google.com/?q=Portland,+Oregon",
		ResumeURL:      "https://example.com/resume.pdf",
		Socials: []Link{
			{Name: "GitHub", URL: "https://github.com/", Description: "View my projects and contributions"},
			{Name: "LinkedIn", URL: "https://www.linkedin.com/", Description: "Connect professionally"},
		},

		FormSubject: "Contact Form Submission",
		StartProject: Template{
			Subject: "Project Quotation Request",
			Body: "Hi {name},\n\nI would like to get a quotation for my project. " +
				"Please let me know how we can proceed further.\n\n" +
				"Looking forward to your response!\n\nBest regards,",
		},
		ScheduleCall: Template{
			Body: "Hi {name},\n\nI hope you're doing well. I would like to schedule a call with you " +
				"to discuss some opportunities. Please let me know your availability for a call " +
				"at your earliest convenience.\n\nLooking forward to connecting!\n\nBest regards,",
		},
	}
}
