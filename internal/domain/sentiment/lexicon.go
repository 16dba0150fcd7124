package sentiment

var defaultLexicon = map[string]float64{
	// positive
	"gain": 0.5, "gains": 0.5, "rise": 0.4, "rises": 0.4, "rising": 0.4, "jump": 0.5, "jumps": 0.5,
	"surge": 0.7, "surges": 0.7, "soar": 0.8, "soars": 0.8, "rally": 0.6, "rallies": 0.6,
	"up": 0.2, "high": 0.3, "higher": 0.3, "record": 0.4, "strong": 0.5, "stronger": 0.5,
	"growth": 0.5, "grow": 0.4, "grows": 0.4, "profit": 0.4, "profits": 0.4, "beat": 0.5, "beats": 0.5,
	"win": 0.6, "wins": 0.6, "won": 0.6, "bags": 0.3, "secures": 0.4, "upgrade": 0.6, "upgrades": 0.6,
	"positive": 0.5, "good": 0.6, "great": 0.8, "best": 0.9, "boost": 0.5, "boosts": 0.5,
	"bullish": 0.7, "outperform": 0.6, "approval": 0.4, "approves": 0.4, "expansion": 0.4,
	"recover": 0.4, "recovers": 0.4, "recovery": 0.4, "robust": 0.5, "buy": 0.3,
	// negative
	"fall": -0.4, "falls": -0.4, "fell": -0.4, "drop": -0.4, "drops": -0.4, "decline": -0.4, "declines": -0.4,
	"plunge": -0.7, "plunges": -0.7, "crash": -0.8, "crashes": -0.8, "slump": -0.6, "slumps": -0.6,
	"down": -0.2, "low": -0.3, "lower": -0.3, "weak": -0.5, "weaker": -0.5, "loss": -0.5, "losses": -0.5,
	"miss": -0.5, "misses": -0.5, "downgrade": -0.6, "downgrades": -0.6, "cut": -0.3, "cuts": -0.3,
	"negative": -0.5, "bad": -0.7, "worst": -1, "bearish": -0.7, "underperform": -0.6,
	"fraud": -0.9, "probe": -0.5, "penalty": -0.6, "fine": -0.3, "default": -0.8, "lawsuit": -0.6,
	"ban": -0.6, "sell": -0.3, "concern": -0.4, "concerns": -0.4, "risk": -0.3, "slowdown": -0.5,
}

var defaultIntensifiers = []string{"very", "sharply", "significantly", "strongly", "massive", "huge", "record-breaking"}

var defaultNegations = []string{"not", "no", "never", "without", "fails", "fail", "didn't", "doesn't", "isn't"}
