package whatsapp

// Inbound webhook payload, entry[].changes[].value carries the messages
// and delivery status updates.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Value ChangeValue `json:"value"`
	Field string      `json:"field"`
}

type ChangeValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Metadata         Metadata          `json:"metadata"`
	Contacts         []Contact         `json:"contacts,omitempty"`
	Messages         []IncomingMessage `json:"messages,omitempty"`
	Statuses         []StatusUpdate    `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	Profile Profile `json:"profile"`
	WaID    string  `json:"wa_id"`
}

type Profile struct {
	Name string `json:"name"`
}

type IncomingMessage struct {
	From        string               `json:"from"`
	ID          string               `json:"id"`
	Timestamp   string               `json:"timestamp"`
	Type        string               `json:"type"`
	Text        *IncomingText        `json:"text,omitempty"`
	Image       *IncomingMedia       `json:"image,omitempty"`
	Video       *IncomingMedia       `json:"video,omitempty"`
	Audio       *IncomingMedia       `json:"audio,omitempty"`
	Document    *IncomingDocument    `json:"document,omitempty"`
	Location    *IncomingLocation    `json:"location,omitempty"`
	Interactive *IncomingInteractive `json:"interactive,omitempty"`
}

type IncomingText struct {
	Body string `json:"body"`
}

type IncomingMedia struct {
	Caption  string `json:"caption,omitempty"`
	MimeType string `json:"mime_type"`
	Sha256   string `json:"sha256"`
	ID       string `json:"id"`
}

type IncomingDocument struct {
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type"`
	Sha256   string `json:"sha256"`
	ID       string `json:"id"`
}

type IncomingLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

type IncomingInteractive struct {
	Type        string `json:"type"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
	ListReply   *Reply `json:"list_reply,omitempty"`
}

type Reply struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type StatusUpdate struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// Outbound message envelope posted to /{phone_number_id}/messages.
type outboundMessage struct {
	MessagingProduct string               `json:"messaging_product"`
	RecipientType    string               `json:"recipient_type,omitempty"`
	To               string               `json:"to,omitempty"`
	Type             string               `json:"type,omitempty"`
	Text             *outboundText        `json:"text,omitempty"`
	Image            *outboundMedia       `json:"image,omitempty"`
	Document         *outboundDocument    `json:"document,omitempty"`
	Interactive      *outboundInteractive `json:"interactive,omitempty"`
	Template         *outboundTemplate    `json:"template,omitempty"`

	// Mark-as-read fields, mutually exclusive with the message fields.
	Status    string `json:"status,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

type outboundText struct {
	PreviewURL bool   `json:"preview_url,omitempty"`
	Body       string `json:"body"`
}

type outboundMedia struct {
	Link    string `json:"link,omitempty"`
	ID      string `json:"id,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type outboundDocument struct {
	Link     string `json:"link,omitempty"`
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

type outboundInteractive struct {
	Type   string             `json:"type"`
	Header *interactiveHeader `json:"header,omitempty"`
	Body   *interactiveText   `json:"body,omitempty"`
	Footer *interactiveText   `json:"footer,omitempty"`
	Action *interactiveAction `json:"action,omitempty"`
}

type interactiveHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type interactiveText struct {
	Text string `json:"text"`
}

type interactiveAction struct {
	Button   string              `json:"button,omitempty"`
	Buttons  []interactiveButton `json:"buttons,omitempty"`
	Sections []Section           `json:"sections,omitempty"`
}

type interactiveButton struct {
	Type  string `json:"type"`
	Reply Reply  `json:"reply"`
}

type outboundTemplate struct {
	Name       string              `json:"name"`
	Language   templateLanguage    `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

// Exported building blocks for the Client operations.

// Media references an image or similar media by public link or by an
// uploaded media ID.
type Media struct {
	Link    string
	ID      string
	Caption string
}

// Document references a document by link or media ID.
type Document struct {
	Link     string
	ID       string
	Filename string
	Caption  string
}

// Button is one reply button, at most three per message.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Section groups rows inside an interactive list message.
type Section struct {
	Title string `json:"title"`
	Rows  []Reply `json:"rows"`
}

// TemplateComponent parameterizes an approved message template.
type TemplateComponent struct {
	Type       string              `json:"type"`
	Parameters []TemplateParameter `json:"parameters,omitempty"`
}

type TemplateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// API response envelopes.
type sendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FbtraceID string `json:"fbtrace_id"`
}
