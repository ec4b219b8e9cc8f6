package airportdb

import "strings"

// iso3166Names maps ISO 3166-1 alpha-3 country codes to country names.
var iso3166Names = map[string]string{
	"AFG": "Afghanistan",
	"ALA": "Åland Islands",
	"ALB": "Albania",
	"DZA": "Algeria",
	"ASM": "American Samoa",
	"AND": "Andorra",
	"AGO": "Angola",
	"AIA": "Anguilla",
	"ATA": "Antarctica",
	"ATG": "Antigua and Barbuda",
	"ARG": "Argentina",
	"ARM": "Armenia",
	"ABW": "Aruba",
	"AUS": "Australia",
	"AUT": "Austria",
	"AZE": "Azerbaijan",
	"BHS": "Bahamas",
	"BHR": "Bahrain",
	"BGD": "Bangladesh",
	"BRB": "Barbados",
	"BLR": "Belarus",
	"BEL": "Belgium",
	"BLZ": "Belize",
	"BEN": "Benin",
	"BMU": "Bermuda",
	"BTN": "Bhutan",
	"BOL": "Bolivia",
	"BES": "Bonaire, Sint Eustatius and Saba",
	"BIH": "Bosnia and Herzegovina",
	"BWA": "Botswana",
	"BVT": "Bouvet Island",
	"BRA": "Brazil",
	"IOT": "British Indian Ocean Territory",
	"BRN": "Brunei Darussalam",
	"BGR": "Bulgaria",
	"BFA": "Burkina Faso",
	"BDI": "Burundi",
	"CPV": "Cabo Verde",
	"KHM": "Cambodia",
	"CMR": "Cameroon",
	"CAN": "Canada",
	"CYM": "Cayman Islands",
	"CAF": "Central African Republic",
	"TCD": "Chad",
	"CHL": "Chile",
	"CHN": "China",
	"CXR": "Christmas Island",
	"CCK": "Cocos Islands",
	"COL": "Colombia",
	"COM": "Comoros",
	"COD": "Democratic Republic of the Congo",
	"COG": "Congo",
	"COK": "Cook Islands",
	"CRI": "Costa Rica",
	"CIV": "Côte d'Ivoire",
	"HRV": "Croatia",
	"CUB": "Cuba",
	"CUW": "Curaçao",
	"CYP": "Cyprus",
	"CZE": "Czechia",
	"DNK": "Denmark",
	"DJI": "Djibouti",
	"DMA": "Dominica",
	"DOM": "Dominican Republic",
	"ECU": "Ecuador",
	"EGY": "Egypt",
	"SLV": "El Salvador",
	"GNQ": "Equatorial Guinea",
	"ERI": "Eritrea",
	"EST": "Estonia",
	"SWZ": "Eswatini",
	"ETH": "Ethiopia",
	"FLK": "Falkland Islands",
	"FRO": "Faroe Islands",
	"FJI": "Fiji",
	"FIN": "Finland",
	"FRA": "France",
	"GUF": "French Guiana",
	"PYF": "French Polynesia",
	"ATF": "French Southern Territories",
	"GAB": "Gabon",
	"GMB": "Gambia",
	"GEO": "Georgia",
	"DEU": "Germany",
	"GHA": "Ghana",
	"GIB": "Gibraltar",
	"GRC": "Greece",
	"GRL": "Greenland",
	"GRD": "Grenada",
	"GLP": "Guadeloupe",
	"GUM": "Guam",
	"GTM": "Guatemala",
	"GGY": "Guernsey",
	"GIN": "Guinea",
	"GNB": "Guinea-Bissau",
	"GUY": "Guyana",
	"HTI": "Haiti",
	"HMD": "Heard Island and McDonald Islands",
	"VAT": "Holy See",
	"HND": "Honduras",
	"HKG": "Hong Kong",
	"HUN": "Hungary",
	"ISL": "Iceland",
	"IND": "India",
	"IDN": "Indonesia",
	"IRN": "Iran",
	"IRQ": "Iraq",
	"IRL": "Ireland",
	"IMN": "Isle of Man",
	"ISR": "Israel",
	"ITA": "Italy",
	"JAM": "Jamaica",
	"JPN": "Japan",
	"JEY": "Jersey",
	"JOR": "Jordan",
	"KAZ": "Kazakhstan",
	"KEN": "Kenya",
	"KIR": "Kiribati",
	"PRK": "Democratic People's Republic of Korea",
	"KOR": "Republic of Korea",
	"KWT": "Kuwait",
	"KGZ": "Kyrgyzstan",
	"LAO": "Laos",
	"LVA": "Latvia",
	"LBN": "Lebanon",
	"LSO": "Lesotho",
	"LBR": "Liberia",
	"LBY": "Libya",
	"LIE": "Liechtenstein",
	"LTU": "Lithuania",
	"LUX": "Luxembourg",
	"MAC": "Macao",
	"MKD": "Republic of North Macedonia",
	"MDG": "Madagascar",
	"MWI": "Malawi",
	"MYS": "Malaysia",
	"MDV": "Maldives",
	"MLI": "Mali",
	"MLT": "Malta",
	"MHL": "Marshall Islands",
	"MTQ": "Martinique",
	"MRT": "Mauritania",
	"MUS": "Mauritius",
	"MYT": "Mayotte",
	"MEX": "Mexico",
	"FSM": "Micronesia",
	"MDA": "Moldova",
	"MCO": "Monaco",
	"MNG": "Mongolia",
	"MNE": "Montenegro",
	"MSR": "Montserrat",
	"MAR": "Morocco",
	"MOZ": "Mozambique",
	"MMR": "Myanmar",
	"NAM": "Namibia",
	"NRU": "Nauru",
	"NPL": "Nepal",
	"NLD": "Netherlands",
	"NCL": "New Caledonia",
	"NZL": "New Zealand",
	"NIC": "Nicaragua",
	"NER": "Niger",
	"NGA": "Nigeria",
	"NIU": "Niue",
	"NFK": "Norfolk Island",
	"MNP": "Northern Mariana Islands",
	"NOR": "Norway",
	"OMN": "Oman",
	"PAK": "Pakistan",
	"PLW": "Palau",
	"PSE": "Palestine, State of",
	"PAN": "Panama",
	"PNG": "Papua New Guinea",
	"PRY": "Paraguay",
	"PER": "Peru",
	"PHL": "Philippines",
	"PCN": "Pitcairn",
	"POL": "Poland",
	"PRT": "Portugal",
	"PRI": "Puerto Rico",
	"QAT": "Qatar",
	"REU": "Réunion",
	"ROU": "Romania",
	"RUS": "Russian Federation",
	"RWA": "Rwanda",
	"BLM": "Saint Barthélemy",
	"SHN": "Saint Helena",
	"KNA": "Saint Kitts and Nevis",
	"LCA": "Saint Lucia",
	"MAF": "Saint Martin",
	"SPM": "Saint Pierre and Miquelon",
	"VCT": "Saint Vincent and the Grenadines",
	"WSM": "Samoa",
	"SMR": "San Marino",
	"STP": "Sao Tome and Principe",
	"SAU": "Saudi Arabia",
	"SEN": "Senegal",
	"SRB": "Serbia",
	"SYC": "Seychelles",
	"SLE": "Sierra Leone",
	"SGP": "Singapore",
	"SXM": "Sint Maarten",
	"SVK": "Slovakia",
	"SVN": "Slovenia",
	"SLB": "Solomon Islands",
	"SOM": "Somalia",
	"ZAF": "South Africa",
	"SGS": "South Georgia and the South Sandwich Islands",
	"SSD": "South Sudan",
	"ESP": "Spain",
	"LKA": "Sri Lanka",
	"SDN": "Sudan",
	"SUR": "Suriname",
	"SJM": "Svalbard and Jan Mayen",
	"SWE": "Sweden",
	"CHE": "Switzerland",
	"SYR": "Syrian Arab Republic",
	"TWN": "Taiwan",
	"TJK": "Tajikistan",
	"TZA": "Tanzania",
	"THA": "Thailand",
	"TLS": "Timor-Leste",
	"TGO": "Togo",
	"TKL": "Tokelau",
	"TON": "Tonga",
	"TTO": "Trinidad and Tobago",
	"TUN": "Tunisia",
	"TUR": "Turkey",
	"TKM": "Turkmenistan",
	"TCA": "Turks and Caicos Islands",
	"TUV": "Tuvalu",
	"UGA": "Uganda",
	"UKR": "Ukraine",
	"ARE": "United Arab Emirates",
	"GBR": "UK",
	"UMI": "United States Minor Outlying Islands",
	"USA": "United States of America",
	"URY": "Uruguay",
	"UZB": "Uzbekistan",
	"VUT": "Vanuatu",
	"VEN": "Venezuela",
	"VNM": "Viet Nam",
	"VGB": "British Virgin Islands",
	"VIR": "U.S. Virgin Islands",
	"WLF": "Wallis and Futuna",
	"ESH": "Western Sahara",
	"YEM": "Yemen",
	"ZMB": "Zambia",
	"ZWE": "Zimbabwe",
}

// icaoCountryPrefixes lists ICAO nationality prefixes. Single-letter
// prefixes come after the two-letter ones sharing their first letter so that
// the longest prefix wins.
var icaoCountryPrefixes = []string{
	"AN", "AY",
	"BG", "BI", "BK",
	"C",
	"DA", "DB", "DF", "DG", "DI", "DN", "DR", "DT", "DX",
	"EB", "ED", "EE", "EF", "EG", "EH", "EI", "EK", "EL",
	"EN", "EP", "ES", "ET", "EV", "EY",
	"FA", "FB", "FC", "FD", "FE", "FG", "FH", "FI", "FJ",
	"FK", "FL", "FM", "FN", "FO", "FP", "FQ", "FS", "FT",
	"FV", "FW", "FX", "FY", "FZ",
	"GA", "GB", "GC", "GE", "GF", "GG", "GL", "GM", "GO",
	"GQ", "GS", "GU", "GV",
	"HA", "HB", "HC", "HD", "HE", "HH", "HK", "HL", "HR",
	"HS", "HT", "HU",
	"K",
	"LA", "LB", "LC", "LD", "LE", "LF", "LG", "LH", "LI",
	"LJ", "LK", "LL", "LM", "LN", "LO", "LP", "LQ", "LR",
	"LS", "LT", "LU", "LV", "LW", "LX", "LY", "LZ",
	"MB", "MD", "MG", "MH", "MK", "MM", "MN", "MP", "MR",
	"MS", "MT", "MU", "MW", "MY", "MZ",
	"NC", "NF", "NG", "NI", "NL", "NS", "NT", "NV", "NW",
	"NZ",
	"OA", "OB", "OE", "OI", "OJ", "OK", "OL", "OM", "OO",
	"OP", "OR", "OS", "OT", "OY",
	"PA", "PB", "PC", "PF", "PG", "PH", "PJ", "PK", "PL",
	"PM", "PO", "PP", "PT", "PW",
	"RC", "RJ", "RK", "RO", "RP",
	"SA", "SB", "SC", "SD", "SE", "SF", "SG", "SH", "SI",
	"SJ", "SK", "SL", "SM", "SN", "SO", "SP", "SS", "SU",
	"SV", "SW", "SY",
	"TA", "TB", "TD", "TF", "TG", "TI", "TJ", "TK", "TL",
	"TN", "TQ", "TR", "TT", "TU", "TV", "TX",
	"UA", "UB", "UC", "UD", "UG", "UK", "UM", "UT",
	"U",
	"VA", "VC", "VD", "VE", "VG", "VH", "VI", "VL", "VM",
	"VN", "VO", "VQ", "VR", "VT", "VV", "VY",
	"WA", "WB", "WI", "WM", "WP", "WQ", "WR", "WS",
	"Y",
	"ZK", "ZM",
	"Z",
}

// CountryName returns the country name for an ISO 3166 alpha-3 code.
func CountryName(cc3 string) (string, bool) {
	name, ok := iso3166Names[cc3]
	return name, ok
}

// ICAOCountryPrefix returns the nationality prefix of an ICAO code, or ""
// if the code is invalid or its country is unknown.
func ICAOCountryPrefix(icao string) string {
	if !IsValidICAO(icao) {
		return ""
	}
	for _, prefix := range icaoCountryPrefixes {
		if strings.HasPrefix(icao, prefix) {
			return prefix
		}
	}
	return ""
}
