package rix

// Version of the rix evaluation core.
const Version = "0.1.0"
