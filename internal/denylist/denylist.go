// Package denylist implements a case-insensitive substring matcher over a
// static set of dangerous command patterns. It never parses shell grammar:
// false positives are acceptable and deliberate.
package denylist

import "strings"

// Default is the built-in set of dangerous command substrings: destructive
// filesystem operations, privileged shutdowns, fork bombs, recursive
// mode-777, kernel-module manipulation, package-purge verbs, and moves of
// system directories.
var Default = []string{
	// Destructive file operations
	"rm -rf /",
	"rm -rf /*",
	"rm -rf ~",
	"rm -rf *",
	"rm -fr /",
	"rm --no-preserve-root",
	"> /dev/sda",
	"> /dev/hda",
	"dd if=/dev/zero",
	"dd if=/dev/random",
	"mkfs",
	"mkfs.ext",
	"format c:",
	// System manipulation
	"shutdown",
	"reboot",
	"halt",
	"poweroff",
	"init 0",
	"init 6",
	"systemctl poweroff",
	"systemctl reboot",
	"systemctl halt",
	// Fork bombs and resource exhaustion
	":(){:|:&};:",
	":(){ :|:& };:",
	"fork while fork",
	// Permission changes
	"chmod 777 /",
	"chmod -R 777 /",
	"chown -R root",
	"chown root /",
	// Package manager dangers
	"apt-get remove --purge",
	"apt remove --purge",
	"yum remove",
	"dnf remove",
	"pacman -R",
	"brew uninstall --force",
	// Kernel manipulation
	"modprobe -r",
	"rmmod",
	"insmod",
	// Network attacks
	"tcpdump -w /dev/null",
	"wget http",
	"curl http",
	// Cron/service manipulation
	"crontab -r",
	// Moving system directories
	"mv /etc",
	"mv /usr",
	"mv /var",
	"mv /bin",
	"mv /sbin",
	"mv /lib",
}

// IsDenied reports whether cmd contains any default or extra pattern,
// matched case-insensitively as a plain substring. Empty strings in extra
// are ignored.
func IsDenied(cmd string, extra []string) bool {
	return FirstMatch(cmd, extra) != ""
}

// FirstMatch returns the first denylist pattern (default patterns checked
// before extras) that cmd contains, or "" if none match.
func FirstMatch(cmd string, extra []string) string {
	lower := strings.ToLower(cmd)

	for _, pattern := range Default {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return pattern
		}
	}
	for _, pattern := range extra {
		if pattern == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return pattern
		}
	}
	return ""
}
