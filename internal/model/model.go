package model

// Normalized model definitions consumed by generators, renderers and validators.
// Values are built once by Build and are not mutated afterwards.

type HTTPMethod string

const (
	GET     HTTPMethod = "get"
	PUT     HTTPMethod = "put"
	POST    HTTPMethod = "post"
	DELETE  HTTPMethod = "delete"
	OPTIONS HTTPMethod = "options"
	HEAD    HTTPMethod = "head"
	PATCH   HTTPMethod = "patch"
	TRACE   HTTPMethod = "trace"
)

// Methods lists the operation keys of a path item in assembly order.
var Methods = []HTTPMethod{GET, PUT, POST, DELETE, OPTIONS, HEAD, PATCH, TRACE}

type Model struct {
	Info    Info     `json:"info" yaml:"info"`
	Methods []Method `json:"methods" yaml:"methods"`
	Tags    []Tag    `json:"tags,omitempty" yaml:"tags,omitempty"`
}

type Info struct {
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	TermsOfService string   `json:"termsOfService,omitempty" yaml:"termsOfService,omitempty"`
	Version        string   `json:"version" yaml:"version"`
	Contact        *Contact `json:"contact,omitempty" yaml:"contact,omitempty"`
	License        *License `json:"license,omitempty" yaml:"license,omitempty"`
}

type Contact struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

type License struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

type Tag struct {
	Name         string        `json:"name" yaml:"name"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty"`
}

type ExternalDocs struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url" yaml:"url"`
}

// Method is one fully assembled operation.
type Method struct {
	Method       HTTPMethod           `json:"method" yaml:"method"`
	Path         Path                 `json:"path" yaml:"path"`
	Tags         []string             `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary      string               `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description  string               `json:"description,omitempty" yaml:"description,omitempty"`
	ExternalDocs *ExternalDocs        `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty"`
	OperationID  string               `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters   []Parameter          `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody  *RequestBody         `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses    []Response           `json:"responses" yaml:"responses"`
	Deprecated   bool                 `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Security     SecurityAlternatives `json:"security,omitempty" yaml:"security,omitempty"`
	Servers      []Server             `json:"servers" yaml:"servers"`
}

type RequestBody struct {
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Content     Content `json:"content" yaml:"content"`
}

type Response struct {
	// Status is a three character code; X stands for any digit and XXX
	// replaces the document's "default" entry.
	Status      string      `json:"status" yaml:"status"`
	Description string      `json:"description" yaml:"description"`
	Headers     []Parameter `json:"headers,omitempty" yaml:"headers,omitempty"`
	Content     Content     `json:"content,omitempty" yaml:"content,omitempty"`
}

type Server struct {
	URL         Path                      `json:"url" yaml:"url"`
	Description string                    `json:"description,omitempty" yaml:"description,omitempty"`
	Variables   map[string]ServerVariable `json:"variables,omitempty" yaml:"variables,omitempty"`
}

type ServerVariable struct {
	Enum        []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default     string   `json:"default" yaml:"default"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

type Location string

const (
	InQuery  Location = "query"
	InHeader Location = "header"
	InPath   Location = "path"
	InCookie Location = "cookie"
)

type Style string

const (
	StyleMatrix         Style = "matrix"
	StyleLabel          Style = "label"
	StyleForm           Style = "form"
	StyleSimple         Style = "simple"
	StyleSpaceDelimited Style = "spaceDelimited"
	StylePipeDelimited  Style = "pipeDelimited"
	StyleDeepObject     Style = "deepObject"
)

// Format governs how a parameter or encoded property is serialized.
type Format struct {
	Style   Style `json:"style" yaml:"style"`
	Explode bool  `json:"explode" yaml:"explode"`
}

type Parameter struct {
	Name        string   `json:"name" yaml:"name"`
	In          Location `json:"in" yaml:"in"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	// AllowEmptyValue and AllowReserved are only carried for query parameters.
	AllowEmptyValue bool    `json:"allowEmptyValue,omitempty" yaml:"allowEmptyValue,omitempty"`
	AllowReserved   bool    `json:"allowReserved,omitempty" yaml:"allowReserved,omitempty"`
	Content         Content `json:"content" yaml:"content"`
	Format          Format  `json:"format" yaml:"format"`
}

// Content maps media types to their description. Parameters store their
// inline schema and examples under the empty media type.
type Content map[string]MediaType

type MediaType struct {
	Schema   *Schema             `json:"schema" yaml:"schema"`
	Examples map[string]*Example `json:"examples,omitempty" yaml:"examples,omitempty"`
	Encoding map[string]Encoding `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

type Example struct {
	Summary       string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Value         any    `json:"value,omitempty" yaml:"value,omitempty"`
	ExternalValue string `json:"externalValue,omitempty" yaml:"externalValue,omitempty"`
}

type Encoding struct {
	ContentType   string      `json:"contentType" yaml:"contentType"`
	Headers       []Parameter `json:"headers,omitempty" yaml:"headers,omitempty"`
	Format        Format      `json:"format" yaml:"format"`
	AllowReserved bool        `json:"allowReserved,omitempty" yaml:"allowReserved,omitempty"`
}

type SecurityScheme struct {
	Name             string      `json:"name" yaml:"name"`
	Type             string      `json:"type" yaml:"type"`
	Description      string      `json:"description,omitempty" yaml:"description,omitempty"`
	In               string      `json:"in,omitempty" yaml:"in,omitempty"`
	ParamName        string      `json:"paramName,omitempty" yaml:"paramName,omitempty"`
	Scheme           string      `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	BearerFormat     string      `json:"bearerFormat,omitempty" yaml:"bearerFormat,omitempty"`
	OpenIDConnectURL string      `json:"openIdConnectUrl,omitempty" yaml:"openIdConnectUrl,omitempty"`
	Flows            *OAuthFlows `json:"flows,omitempty" yaml:"flows,omitempty"`
}

type OAuthFlows struct {
	Implicit          *OAuthFlow `json:"implicit,omitempty" yaml:"implicit,omitempty"`
	Password          *OAuthFlow `json:"password,omitempty" yaml:"password,omitempty"`
	ClientCredentials *OAuthFlow `json:"clientCredentials,omitempty" yaml:"clientCredentials,omitempty"`
	AuthorizationCode *OAuthFlow `json:"authorizationCode,omitempty" yaml:"authorizationCode,omitempty"`
}

type OAuthFlow struct {
	AuthorizationURL string            `json:"authorizationUrl,omitempty" yaml:"authorizationUrl,omitempty"`
	TokenURL         string            `json:"tokenUrl,omitempty" yaml:"tokenUrl,omitempty"`
	RefreshURL       string            `json:"refreshUrl,omitempty" yaml:"refreshUrl,omitempty"`
	Scopes           map[string]string `json:"scopes" yaml:"scopes"`
}

// SecurityRequirement pairs a declared scheme with the scopes it must grant.
type SecurityRequirement struct {
	Scheme *SecurityScheme `json:"scheme" yaml:"scheme"`
	Scopes []string        `json:"scopes" yaml:"scopes"`
}

// SecurityAlternative holds requirements that must all be satisfied.
type SecurityAlternative []SecurityRequirement

// SecurityAlternatives is satisfied when any one alternative is.
type SecurityAlternatives []SecurityAlternative
