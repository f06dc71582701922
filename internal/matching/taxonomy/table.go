// internal/matching/taxonomy/table.go
package taxonomy

// SectorID identifies a top-level industry sector of the national R&D
// program taxonomy.
type SectorID string

const (
	SectorICT            SectorID = "ICT"
	SectorManufacturing  SectorID = "MANUFACTURING"
	SectorBioHealth      SectorID = "BIO_HEALTH"
	SectorEnergy         SectorID = "ENERGY"
	SectorMaterialsParts SectorID = "MATERIALS_PARTS"
	SectorMobility       SectorID = "MOBILITY"
	SectorAgriFood       SectorID = "AGRI_FOOD"
	SectorEnvironment    SectorID = "ENVIRONMENT"
	SectorDefense        SectorID = "DEFENSE"
	SectorCultureContent SectorID = "CULTURE_CONTENT"
)

type sectorDef struct {
	id      SectorID
	primary []string
	subs    map[string][]string
}

// sectorDefs lists every sector with its primary keywords and sub-sector
// keyword groups. Resolution walks this slice in order, so broader
// sectors sit before narrower ones. Keywords mix Korean and English the
// way agency announcements do; all are normalized at table build.
var sectorDefs = []sectorDef{
	{
		id:      SectorICT,
		primary: []string{"ict", "정보통신", "소프트웨어", "software", "인공지능", "ai", "빅데이터", "클라우드", "cloud", "사물인터넷", "iot", "디지털전환", "플랫폼"},
		subs: map[string][]string{
			"인공지능":  {"머신러닝", "딥러닝", "machine learning", "생성형 AI", "추천시스템"},
			"통신":    {"5G", "6G", "네트워크", "통신장비", "위성통신"},
			"정보보호":  {"사이버보안", "보안", "security", "암호기술"},
			"반도체설계": {"반도체", "시스템반도체", "팹리스", "fabless", "AI반도체"},
		},
	},
	{
		id:      SectorManufacturing,
		primary: []string{"제조", "제조업", "manufacturing", "생산기술", "스마트공장", "smart factory", "기계", "로봇", "robot", "자동화", "뿌리산업"},
		subs: map[string][]string{
			"정밀기계":  {"정밀가공", "공작기계", "금형", "CNC"},
			"로봇":    {"산업용 로봇", "협동로봇", "로보틱스", "robotics"},
			"적층제조":  {"3D프린팅", "적층제조", "additive manufacturing"},
		},
	},
	{
		id:      SectorBioHealth,
		primary: []string{"바이오", "bio", "의료", "헬스케어", "healthcare", "제약", "의약품", "진단", "디지털헬스"},
		subs: map[string][]string{
			"신약":    {"신약개발", "후보물질", "drug discovery", "임상"},
			"의료기기":  {"의료기기", "medical device", "체외진단", "영상진단"},
			"디지털헬스": {"원격의료", "웨어러블", "건강관리 서비스"},
		},
	},
	{
		id:      SectorEnergy,
		primary: []string{"에너지", "energy", "신재생", "재생에너지", "태양광", "풍력", "수소", "hydrogen", "배터리", "이차전지", "전력"},
		subs: map[string][]string{
			"수소":   {"수전해", "연료전지", "fuel cell", "수소충전"},
			"이차전지": {"전고체", "양극재", "음극재", "배터리 관리"},
			"전력망":  {"스마트그리드", "smart grid", "에너지저장", "ESS"},
		},
	},
	{
		id:      SectorMaterialsParts,
		primary: []string{"소재", "부품", "장비", "소재부품장비", "소부장", "신소재", "나노", "nano", "화학소재", "금속", "세라믹"},
		subs: map[string][]string{
			"반도체소재": {"반도체소재", "웨이퍼", "포토레지스트", "식각"},
			"탄소소재":  {"탄소섬유", "그래핀", "graphene", "복합소재"},
			"디스플레이": {"디스플레이", "display", "OLED", "마이크로LED"},
		},
	},
	{
		id:      SectorMobility,
		primary: []string{"모빌리티", "mobility", "자동차", "automotive", "전기차", "electric vehicle", "자율주행", "autonomous", "드론", "drone", "항공", "UAM", "철도", "조선"},
		subs: map[string][]string{
			"자율주행": {"라이다", "lidar", "V2X", "ADAS"},
			"친환경차": {"전기차 충전", "수소차", "배터리팩"},
			"항공우주": {"위성", "발사체", "우주", "aerospace"},
		},
	},
	{
		id:      SectorAgriFood,
		primary: []string{"농업", "농식품", "식품", "food", "스마트팜", "smart farm", "수산", "축산", "푸드테크", "foodtech"},
		subs: map[string][]string{
			"스마트팜":  {"수직농장", "정밀농업", "온실제어"},
			"대체식품":  {"대체육", "배양육", "대체단백질"},
			"식품안전":  {"HACCP", "식품안전", "콜드체인"},
		},
	},
	{
		id:      SectorEnvironment,
		primary: []string{"환경", "environment", "탄소중립", "carbon neutral", "기후", "climate", "자원순환", "재활용", "recycling", "폐기물", "수처리"},
		subs: map[string][]string{
			"탄소포집": {"CCUS", "탄소포집", "CO2 포집"},
			"자원순환": {"업사이클", "폐배터리", "재자원화"},
			"물산업":  {"정수", "하수처리", "막여과", "membrane"},
		},
	},
	{
		id:      SectorDefense,
		primary: []string{"국방", "방위산업", "방산", "defense", "군수", "무기체계", "민군협력"},
		subs: map[string][]string{
			"감시정찰": {"레이더", "radar", "전자광학", "신호정보"},
			"무인체계": {"무인기", "군용드론", "무인수상정"},
		},
	},
	{
		id:      SectorCultureContent,
		primary: []string{"문화", "콘텐츠", "content", "미디어", "media", "게임", "game", "영상", "웹툰", "음악", "K콘텐츠", "메타버스", "관광"},
		subs: map[string][]string{
			"게임":    {"게임개발", "모바일게임", "콘솔게임"},
			"실감콘텐츠": {"확장현실", "XR", "가상현실", "증강현실"},
			"영상콘텐츠": {"OTT", "드라마", "애니메이션"},
		},
	},
}

type relevancePair struct {
	a, b  SectorID
	value float64
}

// relevancePairs encodes cross-sector relevance, symmetric by
// construction. Pairs absent here fall back to the table's conservative
// default. DEFENSE stays unlisted against general manufacturing on
// purpose: 방산 programs gate on security clearances that a plain
// manufacturer cannot satisfy.
var relevancePairs = []relevancePair{
	{SectorICT, SectorManufacturing, 0.7},
	{SectorICT, SectorMobility, 0.7},
	{SectorICT, SectorCultureContent, 0.7},
	{SectorICT, SectorMaterialsParts, 0.7},
	{SectorICT, SectorBioHealth, 0.6},
	{SectorICT, SectorEnergy, 0.5},
	{SectorICT, SectorDefense, 0.5},
	{SectorManufacturing, SectorMaterialsParts, 0.8},
	{SectorManufacturing, SectorMobility, 0.7},
	{SectorManufacturing, SectorEnergy, 0.5},
	{SectorManufacturing, SectorEnvironment, 0.5},
	{SectorMaterialsParts, SectorEnergy, 0.7},
	{SectorMaterialsParts, SectorMobility, 0.6},
	{SectorMaterialsParts, SectorBioHealth, 0.5},
	{SectorEnergy, SectorEnvironment, 0.7},
	{SectorEnergy, SectorMobility, 0.6},
	{SectorAgriFood, SectorBioHealth, 0.6},
	{SectorAgriFood, SectorEnvironment, 0.5},
	{SectorMobility, SectorDefense, 0.5},
}
