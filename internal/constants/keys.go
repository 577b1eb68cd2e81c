package constants

const (
	// Context Keys
	ContextKeyIsLoggedIn = "isLoggedIn"
	ContextKeySettings   = "settings"
	ContextKeyRender     = "renderContext"
	ContextKeyRole       = "role"

	// Session Keys
	SessionKeyAuthenticated = "authenticated"
	SessionKeyRole          = "role"
	SessionKeyNonce         = "nonce"
	SessionKeySuccessFlash  = "success_flash"

	// Setting Keys
	SettingPassword        = "password"
	SettingSiteTitle       = "site_title"
	SettingSiteDescription = "site_description"

	// Roles
	RoleAdministrator = "administrator"

	// Capabilities
	CapManageOptions   = "manage_options"
	CapActivatePlugins = "activate_plugins"

	// Host form fields posted to the options-save endpoint.
	FormOptionPage = "option_page"
	FormAction     = "action"
	FormNonce      = "_nonce"
	FormReferer    = "_referer"

	// HomePageSlug is the page rendered at the site root.
	HomePageSlug = "home"
)
