package common

// SessionCookieName is the cookie used to carry the session token between
// the browser and the request-handling layer.
const SessionCookieName = "filehub_session"
