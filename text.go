package main

// Profile is the fixed record shown in the hero, the OG card and the
// typewriter stream.
type Profile struct {
	Name      string
	Role      string
	Bio       string
	GitHubURL string
	AvatarURL string
	Socials   []Social
}

// Social is an outbound contact link.
type Social struct {
	Label string
	URL   string
}

var profile = Profile{
	Name: "Kinn00kinn",
	Role: "Portfolio / KOSEN Advanced Course Student",
	Bio: `高専専攻科で情報工学を学んでいます。Webとインフラ、低レイヤの間を行き来しながら、
作って壊して学ぶのが好きです。最近はGoで小さなサービスを書いています。`,
	GitHubURL: "https://github.com/kinn00kinn",
	AvatarURL: "https://github.com/kinn00kinn.png",
	Socials: []Social{
		{Label: "GitHub", URL: "https://github.com/kinn00kinn"},
		{Label: "Zenn", URL: "https://zenn.dev/kinnkinn"},
		{Label: "X", URL: "https://x.com/kinn00kinn"},
	},
}

// History entries for the #history section.
var history = []struct {
	Period string
	Title  string
	Detail string
}{
	{"2019 - 2024", "National Institute of Technology (KOSEN)", "Department of Information Engineering"},
	{"2024 - Present", "KOSEN Advanced Course", "Production System Engineering"},
}

// typewriterText resolves the ?field= values accepted by /typewriter.
func typewriterText(field string) (string, bool) {
	switch field {
	case "name":
		return profile.Name, true
	case "role":
		return profile.Role, true
	case "bio":
		return profile.Bio, true
	}
	return "", false
}
