package kindle

// InputKind tells a host how to render and store an input
type InputKind string

const (
	KindStr       InputKind = "str"
	KindMultiline InputKind = "multiline"
	KindSecret    InputKind = "secret"
)

const (
	InputAuthor      = "author"
	InputTitle       = "title"
	InputContent     = "content"
	InputKindleEmail = "kindle_email"
	InputSenderEmail = "sender_email"
	InputAppPassword = "app_password"
	InputSMTPServer  = "smtp_server"
	InputSMTPPort    = "smtp_port"

	DefaultSMTPServer = "smtp.protonmail.ch"
	DefaultSMTPPort   = "587"
)

// Input describes one field of the component's input schema
type Input struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Info        string    `json:"info"`
	Kind        InputKind `json:"kind"`
	ToolMode    bool      `json:"tool_mode"`
	Value       string    `json:"value,omitempty"`
}

// Output describes the component's single result
type Output struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

var inputs = []Input{
	{
		Name:        InputAuthor,
		DisplayName: "Author",
		Info:        "The author used for the book metadata",
		Kind:        KindStr,
		ToolMode:    true,
	},
	{
		Name:        InputTitle,
		DisplayName: "Title",
		Info:        "The title of the file used for the book metadata",
		Kind:        KindStr,
		ToolMode:    true,
	},
	{
		Name:        InputContent,
		DisplayName: "Content (HTML)",
		Info:        "A string containing the file content, which can include HTML for formatting.",
		Kind:        KindMultiline,
		ToolMode:    true,
	},
	{
		Name:        InputKindleEmail,
		DisplayName: "Kindle Email",
		Info:        "Your @kindle.com email address.",
		Kind:        KindSecret,
	},
	{
		Name:        InputSenderEmail,
		DisplayName: "Sender Email",
		Info:        "Your verified email (must be the one approved for your Kindle account).",
		Kind:        KindSecret,
	},
	{
		Name:        InputAppPassword,
		DisplayName: "Password / Token",
		Info:        "Your email account password or an app-specific token.",
		Kind:        KindSecret,
	},
	{
		Name:        InputSMTPServer,
		DisplayName: "SMTP Server",
		Info:        "Your SMTP server. For ProtonMail, use `smtp.protonmail.ch`.",
		Kind:        KindStr,
		Value:       DefaultSMTPServer,
	},
	{
		Name:        InputSMTPPort,
		DisplayName: "SMTP Port",
		Info:        "The port for your SMTP server. Use 587 for STARTTLS.",
		Kind:        KindStr,
		Value:       DefaultSMTPPort,
	},
}

// StatusOutput is the name of the status message output
var StatusOutput = Output{Name: "status_message", DisplayName: "Status Message"}

// Inputs returns a copy of the input schema
func Inputs() []Input {
	out := make([]Input, len(inputs))
	copy(out, inputs)
	return out
}

func defaultValue(name string) string {
	for _, in := range inputs {
		if in.Name == name {
			return in.Value
		}
	}
	return ""
}
