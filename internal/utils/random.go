package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

var workSites = []string{"东校区", "南校区", "北校区", "珠海校区"}

// GenerateRandomChineseName 返回 (姓, 名)
func GenerateRandomChineseName() (string, string) {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname, name
}

var digits = "0123456789"

// GenerateCodeFromChineseName 取每个字拼音的前若干个字母，再加上几位数字作为员工编号
func GenerateCodeFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	code := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		code += py[:length]
	}

	digitsLength := rand.Intn(3) + 2
	for i := 0; i < digitsLength; i++ {
		code += string(digits[rand.Intn(len(digits))])
	}

	return code
}

func GenerateRandomEmployee(emailDomainName string, positionIDs []int64) *domain.Employee {
	lastName, firstName := GenerateRandomChineseName()
	code := GenerateCodeFromChineseName(lastName + firstName)

	employee := &domain.Employee{
		Code:         code,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        code + "@" + emailDomainName,
		WorkSiteName: workSites[rand.Intn(len(workSites))],
	}

	if len(positionIDs) > 0 {
		positionID := positionIDs[rand.Intn(len(positionIDs))]
		employee.DefaultPositionID = &positionID
	}

	return employee
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var shiftNames = []string{"早班", "中班", "晚班", "夜班"}

// GenerateRandomPosition 把一天均分成若干个首尾相接的班次，每个班次每天随机需要 0~3 人。
// 班次 ID 使用负数占位，插入数据库后会被替换
func GenerateRandomPosition() *domain.Position {
	position := &domain.Position{
		Name:         "岗位" + GenerateRandomID(3, 3),
		Requirements: domain.Requirements{},
	}

	shiftsNum := rand.Intn(3) + 2
	hourPerShift := 24 / shiftsNum
	firstHour := 6

	for i := 0; i < shiftsNum; i++ {
		startHour := (firstHour + i*hourPerShift) % 24
		endHour := (firstHour + (i+1)*hourPerShift) % 24
		if i == shiftsNum-1 {
			endHour = firstHour
		}

		shift := domain.Shift{
			ID:        -int64(i + 1),
			Name:      shiftNames[i%len(shiftNames)],
			StartTime: fmt.Sprintf("%02d:00", startHour),
			EndTime:   fmt.Sprintf("%02d:00", endHour),
		}
		position.Shifts = append(position.Shifts, shift)

		for day := int32(1); day <= 7; day++ {
			position.Requirements.Set(shift.ID, day, int32(rand.Intn(4)))
		}
	}

	return position
}

// 使用 Fisher-Yates 洗牌算法来生成一个随机子集
func GenerateRandomSubset(arr []int32) []int32 {
	arrCopy := append([]int32{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(len(arrCopy)) + 1
	return arrCopy[:l]
}

var allDays = []int32{1, 2, 3, 4, 5, 6, 7}

func GenerateRandomAvailability(scheduleID int64, position *domain.Position, employee *domain.Employee) *domain.Availability {
	availability := &domain.Availability{
		ScheduleID: scheduleID,
		EmpID:      employee.ID,
		Items:      make([]domain.AvailabilityItem, 0, len(position.Shifts)),
	}

	for _, shift := range position.Shifts {
		if shift.IsFlexible {
			continue
		}
		availability.Items = append(availability.Items, domain.AvailabilityItem{
			ShiftID: shift.ID,
			Days:    GenerateRandomSubset(allDays),
		})
	}

	return availability
}

// MondayOf 返回 t 所在周的周一
func MondayOf(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return domain.FormatDate(t.AddDate(0, 0, -offset))
}

// NormalizeName 去掉 CSV 中姓名的空白
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), "")
}
